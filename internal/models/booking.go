package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	AppointmentDate string             `bson:"appointmentDate" json:"appointmentDate" binding:"required"`
	Treatment       string             `bson:"treatment" json:"treatment" binding:"required"`
	Patient         string             `bson:"patient" json:"patient"`
	Slot            string             `bson:"slot" json:"slot" binding:"required"`
	Email           string             `bson:"email" json:"email" binding:"required,email"`
	Phone           string             `bson:"phone" json:"phone"`
	Price           float64            `bson:"price" json:"price"`
	Paid            bool               `bson:"paid" json:"paid"`
	TransactionID   string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
}
