package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Payment records a completed gateway payment for a booking.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookingID     string             `bson:"bookingId" json:"bookingId" binding:"required"`
	Email         string             `bson:"email" json:"email"`
	Price         float64            `bson:"price" json:"price"`
	TransactionID string             `bson:"transactionId" json:"transactionId" binding:"required"`
}
