package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TreatmentOption is a bookable treatment with its fixed daily slot labels.
type TreatmentOption struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Slots []string           `bson:"slots" json:"slots"`
	Price float64            `bson:"price" json:"price"`
}
