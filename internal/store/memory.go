package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/models"
)

// MemoryStore keeps everything in process memory. It enforces the same
// uniqueness rules as the Mongo indexes and preserves insertion order.
type MemoryStore struct {
	mu         sync.Mutex
	treatments []models.TreatmentOption
	bookings   []models.Booking
	users      []models.User
	doctors    []models.Doctor
	payments   []models.Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListTreatments(_ context.Context) ([]models.TreatmentOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TreatmentOption, len(s.treatments))
	for i, t := range s.treatments {
		t.Slots = append([]string(nil), t.Slots...)
		out[i] = t
	}
	return out, nil
}

func (s *MemoryStore) ListTreatmentNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.treatments))
	for _, t := range s.treatments {
		names = append(names, t.Name)
	}
	return names, nil
}

func (s *MemoryStore) UpsertTreatment(_ context.Context, t models.TreatmentOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.Slots = append([]string(nil), t.Slots...)
	for i := range s.treatments {
		if s.treatments[i].Name == t.Name {
			t.ID = s.treatments[i].ID
			s.treatments[i] = t
			return nil
		}
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	s.treatments = append(s.treatments, t)
	return nil
}

func (s *MemoryStore) filterBookings(match func(models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemoryStore) ListBookingsByDate(_ context.Context, date string) ([]models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.AppointmentDate == date }), nil
}

func (s *MemoryStore) ListBookingsByEmail(_ context.Context, email string) ([]models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.Email == email }), nil
}

func (s *MemoryStore) FindBookings(_ context.Context, date, email, treatment string) ([]models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool {
		return b.AppointmentDate == date && b.Email == email && b.Treatment == treatment
	}), nil
}

func (s *MemoryStore) InsertBooking(_ context.Context, b *models.Booking) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.AppointmentDate == b.AppointmentDate &&
			existing.Email == b.Email &&
			existing.Treatment == b.Treatment {
			return primitive.NilObjectID, ErrDuplicate
		}
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.bookings = append(s.bookings, *b)
	return b.ID, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) MarkBookingPaid(_ context.Context, id primitive.ObjectID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == id {
			if s.bookings[i].Paid {
				return ErrAlreadyPaid
			}
			s.bookings[i].Paid = true
			s.bookings[i].TransactionID = transactionID
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) UnmarkBookingPaid(_ context.Context, id primitive.ObjectID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == id && s.bookings[i].TransactionID == transactionID {
			s.bookings[i].Paid = false
			s.bookings[i].TransactionID = ""
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, *u)
	return u.ID, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(make([]models.User, 0, len(s.users)), s.users...), nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) setRole(match func(models.User) bool, role string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if match(s.users[i]) {
			if s.users[i].Role == role {
				return 0, nil
			}
			s.users[i].Role = role
			return 1, nil
		}
	}
	return 0, ErrNotFound
}

func (s *MemoryStore) SetRoleByID(_ context.Context, id primitive.ObjectID, role string) (int64, error) {
	return s.setRole(func(u models.User) bool { return u.ID == id }, role)
}

func (s *MemoryStore) SetRoleByEmail(_ context.Context, email, role string) (int64, error) {
	return s.setRole(func(u models.User) bool { return u.Email == email }, role)
}

func (s *MemoryStore) CreateDoctor(_ context.Context, d *models.Doctor) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	s.doctors = append(s.doctors, *d)
	return d.ID, nil
}

func (s *MemoryStore) ListDoctors(_ context.Context) ([]models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append(make([]models.Doctor, 0, len(s.doctors)), s.doctors...), nil
}

func (s *MemoryStore) DeleteDoctor(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doctors {
		if s.doctors[i].ID == id {
			s.doctors = append(s.doctors[:i], s.doctors[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) InsertPayment(_ context.Context, p *models.Payment) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.payments = append(s.payments, *p)
	return p.ID, nil
}

// Payments returns the recorded payments.
func (s *MemoryStore) Payments() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Payment(nil), s.payments...)
}

var _ Store = (*MemoryStore)(nil)
