package services

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/logger"
	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/store"
)

type published struct {
	key string
	v   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, v: v})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.key)
	}
	return keys
}

var errStoreDown = errors.New("connection refused")

// flakyStore fails the lookups and inserts it is told to.
type flakyStore struct {
	*store.MemoryStore
	findErr    error
	insertErr  error
	skipLookup bool
	inserts    int

	markErr    error
	paymentErr error
	// staleReads hides the paid flag from GetBooking, as a read racing a
	// concurrent payment would.
	staleReads bool
}

func (s *flakyStore) GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	b, err := s.MemoryStore.GetBooking(ctx, id)
	if err == nil && s.staleReads {
		b.Paid = false
		b.TransactionID = ""
	}
	return b, err
}

func (s *flakyStore) MarkBookingPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	return s.MemoryStore.MarkBookingPaid(ctx, id, transactionID)
}

func (s *flakyStore) InsertPayment(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	if s.paymentErr != nil {
		return primitive.NilObjectID, s.paymentErr
	}
	return s.MemoryStore.InsertPayment(ctx, p)
}

func (s *flakyStore) FindBookings(ctx context.Context, date, email, treatment string) ([]models.Booking, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.skipLookup {
		return nil, nil
	}
	return s.MemoryStore.FindBookings(ctx, date, email, treatment)
}

func (s *flakyStore) InsertBooking(ctx context.Context, b *models.Booking) (primitive.ObjectID, error) {
	s.inserts++
	if s.insertErr != nil {
		return primitive.NilObjectID, s.insertErr
	}
	return s.MemoryStore.InsertBooking(ctx, b)
}

func newBookingService(s store.Store) (*BookingService, *recordingPublisher) {
	pub := &recordingPublisher{}
	log := logger.Discard()
	return NewBookingService(s, NewNotificationService(pub, log), log), pub
}
