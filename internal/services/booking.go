package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/store"
)

var tracer = otel.Tracer("github.com/harentsoaR/doctors-portal/internal/services")

// AdmitBooking decides whether candidate may be stored given the bookings
// already held for its (appointmentDate, email, treatment) triplet. The slot
// plays no part in the decision.
func AdmitBooking(candidate models.Booking, existing []models.Booking) error {
	if len(existing) > 0 {
		return &DuplicateBookingError{Date: candidate.AppointmentDate}
	}
	return nil
}

type BookingService struct {
	store  store.Store
	notify *NotificationService
	log    logrus.FieldLogger
}

func NewBookingService(s store.Store, notify *NotificationService, log logrus.FieldLogger) *BookingService {
	return &BookingService{store: s, notify: notify, log: log}
}

// Availability returns the treatment catalog with the slots still open on date.
func (s *BookingService) Availability(ctx context.Context, date string) ([]models.TreatmentOption, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Availability")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.date", date))

	if date == "" {
		return nil, invalid("date query parameter is required")
	}
	catalog, err := s.store.ListTreatments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	booked, err := s.store.ListBookingsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return ComputeAvailability(date, catalog, booked), nil
}

func (s *BookingService) TreatmentNames(ctx context.Context) ([]string, error) {
	return s.store.ListTreatmentNames(ctx)
}

// Create admits and stores b, returning its new id. A second booking for the
// same patient, date and treatment yields *DuplicateBookingError, whether it
// is caught by the lookup or by the store's unique index.
func (s *BookingService) Create(ctx context.Context, b *models.Booking) (primitive.ObjectID, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	if err := validateBooking(b); err != nil {
		return primitive.NilObjectID, err
	}
	span.SetAttributes(
		attribute.String("appointment.date", b.AppointmentDate),
		attribute.String("appointment.treatment", b.Treatment),
	)

	existing, err := s.store.FindBookings(ctx, b.AppointmentDate, b.Email, b.Treatment)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("check existing booking: %w", err)
	}
	if err := AdmitBooking(*b, existing); err != nil {
		return primitive.NilObjectID, err
	}

	b.ID = primitive.NilObjectID
	b.Paid = false
	b.TransactionID = ""
	id, err := s.store.InsertBooking(ctx, b)
	if errors.Is(err, store.ErrDuplicate) {
		return primitive.NilObjectID, &DuplicateBookingError{Date: b.AppointmentDate}
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert booking: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": id.Hex(),
		"date":       b.AppointmentDate,
		"treatment":  b.Treatment,
		"slot":       b.Slot,
	}).Info("booking created")
	s.notify.BookingCreated(ctx, b)
	return id, nil
}

func (s *BookingService) ListForPatient(ctx context.Context, email string) ([]models.Booking, error) {
	return s.store.ListBookingsByEmail(ctx, email)
}

func (s *BookingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("booking %s: %w", id.Hex(), ErrNotFound)
	}
	return b, err
}

func validateBooking(b *models.Booking) error {
	var missing []string
	if b.AppointmentDate == "" {
		missing = append(missing, "appointmentDate")
	}
	if b.Email == "" {
		missing = append(missing, "email")
	}
	if b.Treatment == "" {
		missing = append(missing, "treatment")
	}
	if b.Slot == "" {
		missing = append(missing, "slot")
	}
	if len(missing) > 0 {
		return invalid("missing %s", strings.Join(missing, ", "))
	}
	return nil
}
