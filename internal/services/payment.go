package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/store"
)

// PaymentGateway creates a payment intent for amount (in cents) and returns
// the client secret the browser needs to confirm it.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64) (string, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

type PaymentService struct {
	store   store.Store
	gateway PaymentGateway
	notify  *NotificationService
	log     logrus.FieldLogger
}

// NewPaymentService wires the payment flow. A nil gateway makes CreateIntent
// fail with ErrGatewayDisabled.
func NewPaymentService(s store.Store, gateway PaymentGateway, notify *NotificationService, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{store: s, gateway: gateway, notify: notify, log: log}
}

func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.CreateIntent")
	defer span.End()

	if price <= 0 {
		return "", invalid("price must be positive")
	}
	if s.gateway == nil {
		return "", ErrGatewayDisabled
	}
	amount := int64(math.Round(price * 100))
	secret, err := s.gateway.CreateIntent(ctx, amount)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return secret, nil
}

// Record marks the booking p references as paid and stores p. A booking is
// paid at most once; a second payment fails with ErrAlreadyExists.
func (s *PaymentService) Record(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.Record")
	defer span.End()

	if p.TransactionID == "" {
		return primitive.NilObjectID, invalid("transactionId is required")
	}
	bookingID, err := primitive.ObjectIDFromHex(p.BookingID)
	if err != nil {
		return primitive.NilObjectID, invalid("invalid booking ID")
	}
	booking, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return primitive.NilObjectID, fmt.Errorf("booking %s: %w", p.BookingID, ErrNotFound)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("load booking: %w", err)
	}

	if booking.Paid {
		return primitive.NilObjectID, fmt.Errorf("booking %s already paid: %w", p.BookingID, ErrAlreadyExists)
	}

	err = s.store.MarkBookingPaid(ctx, bookingID, p.TransactionID)
	switch {
	case errors.Is(err, store.ErrAlreadyPaid):
		return primitive.NilObjectID, fmt.Errorf("booking %s already paid: %w", p.BookingID, ErrAlreadyExists)
	case errors.Is(err, store.ErrNotFound):
		return primitive.NilObjectID, fmt.Errorf("booking %s: %w", p.BookingID, ErrNotFound)
	case err != nil:
		return primitive.NilObjectID, fmt.Errorf("mark booking paid: %w", err)
	}

	p.ID = primitive.NilObjectID
	id, err := s.store.InsertPayment(ctx, p)
	if err != nil {
		if undoErr := s.store.UnmarkBookingPaid(ctx, bookingID, p.TransactionID); undoErr != nil {
			s.log.WithError(undoErr).WithField("booking_id", p.BookingID).Error("failed to revert booking payment")
		}
		return primitive.NilObjectID, fmt.Errorf("insert payment: %w", err)
	}

	booking.Paid = true
	booking.TransactionID = p.TransactionID
	s.log.WithFields(logrus.Fields{
		"booking_id":     booking.ID.Hex(),
		"transaction_id": p.TransactionID,
	}).Info("booking paid")
	s.notify.BookingPaid(ctx, booking)
	return id, nil
}
