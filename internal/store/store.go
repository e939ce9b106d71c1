// Package store holds the persistence interfaces used by the services and
// their MongoDB and in-memory implementations.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("duplicate key")
	ErrAlreadyPaid = errors.New("booking already paid")
)

type TreatmentStore interface {
	ListTreatments(ctx context.Context) ([]models.TreatmentOption, error)
	ListTreatmentNames(ctx context.Context) ([]string, error)
	// UpsertTreatment replaces the option with the same name, or inserts it.
	UpsertTreatment(ctx context.Context, t models.TreatmentOption) error
}

type BookingStore interface {
	ListBookingsByDate(ctx context.Context, date string) ([]models.Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error)
	// FindBookings returns the bookings matching the (date, email, treatment) triplet.
	FindBookings(ctx context.Context, date, email, treatment string) ([]models.Booking, error)
	// InsertBooking returns ErrDuplicate when the triplet is already taken.
	InsertBooking(ctx context.Context, b *models.Booking) (primitive.ObjectID, error)
	GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// MarkBookingPaid only matches unpaid bookings and returns ErrAlreadyPaid
	// for a booking that was paid before.
	MarkBookingPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error
	// UnmarkBookingPaid reverts MarkBookingPaid for the same transaction.
	UnmarkBookingPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error
}

type UserStore interface {
	// CreateUser returns ErrDuplicate when the email is already registered.
	CreateUser(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetRoleByID(ctx context.Context, id primitive.ObjectID, role string) (modified int64, err error)
	SetRoleByEmail(ctx context.Context, email, role string) (modified int64, err error)
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *models.Doctor) (primitive.ObjectID, error)
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	DeleteDoctor(ctx context.Context, id primitive.ObjectID) error
}

type PaymentStore interface {
	InsertPayment(ctx context.Context, p *models.Payment) (primitive.ObjectID, error)
}

// Store is the full data layer handed to the services.
type Store interface {
	TreatmentStore
	BookingStore
	UserStore
	DoctorStore
	PaymentStore
}
