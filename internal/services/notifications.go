package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctors-portal/internal/events"
	"github.com/harentsoaR/doctors-portal/internal/models"
)

// NotificationService announces booking lifecycle changes so that mail or
// SMS workers can pick them up. Delivery is best effort.
type NotificationService struct {
	pub events.Publisher
	log logrus.FieldLogger
}

func NewNotificationService(pub events.Publisher, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{pub: pub, log: log}
}

type bookingEvent struct {
	BookingID       string  `json:"bookingId"`
	Email           string  `json:"email"`
	Patient         string  `json:"patient,omitempty"`
	AppointmentDate string  `json:"appointmentDate"`
	Treatment       string  `json:"treatment"`
	Slot            string  `json:"slot"`
	Price           float64 `json:"price"`
	TransactionID   string  `json:"transactionId,omitempty"`
}

func (s *NotificationService) BookingCreated(ctx context.Context, b *models.Booking) {
	s.publish(ctx, events.KeyBookingCreated, b)
}

func (s *NotificationService) BookingPaid(ctx context.Context, b *models.Booking) {
	s.publish(ctx, events.KeyBookingPaid, b)
}

func (s *NotificationService) publish(ctx context.Context, key string, b *models.Booking) {
	if s == nil || s.pub == nil {
		return
	}
	ev := bookingEvent{
		BookingID:       b.ID.Hex(),
		Email:           b.Email,
		Patient:         b.Patient,
		AppointmentDate: b.AppointmentDate,
		Treatment:       b.Treatment,
		Slot:            b.Slot,
		Price:           b.Price,
		TransactionID:   b.TransactionID,
	}
	if err := s.pub.PublishJSON(ctx, key, ev); err != nil {
		s.log.WithError(err).WithField("event", key).Warn("failed to publish notification")
	}
}
