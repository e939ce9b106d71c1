package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal/internal/models"
)

const (
	treatmentsCollection = "treatments"
	bookingsCollection   = "bookings"
	usersCollection      = "users"
	doctorsCollection    = "doctors"
	paymentsCollection   = "payments"
)

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the unique indexes the booking invariants rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		}},
		treatmentsCollection: {{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name"),
		}},
		bookingsCollection: {
			{
				Keys: bson.D{
					{Key: "appointmentDate", Value: 1},
					{Key: "email", Value: 1},
					{Key: "treatment", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("uniq_patient_date_treatment"),
			},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) ListTreatments(ctx context.Context) ([]models.TreatmentOption, error) {
	cursor, err := s.db.Collection(treatmentsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	treatments := make([]models.TreatmentOption, 0)
	if err := cursor.All(ctx, &treatments); err != nil {
		return nil, err
	}
	return treatments, nil
}

func (s *MongoStore) ListTreatmentNames(ctx context.Context) ([]string, error) {
	findOptions := options.Find().SetProjection(bson.M{"name": 1, "_id": 0})
	cursor, err := s.db.Collection(treatmentsCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	names := make([]string, 0)
	for cursor.Next(ctx) {
		var option models.TreatmentOption
		if err := cursor.Decode(&option); err != nil {
			return nil, err
		}
		names = append(names, option.Name)
	}
	return names, cursor.Err()
}

func (s *MongoStore) UpsertTreatment(ctx context.Context, t models.TreatmentOption) error {
	update := bson.M{"$set": bson.M{"name": t.Name, "slots": t.Slots, "price": t.Price}}
	_, err := s.db.Collection(treatmentsCollection).UpdateOne(ctx,
		bson.M{"name": t.Name}, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoStore) findBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *MongoStore) ListBookingsByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"appointmentDate": date})
}

func (s *MongoStore) ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindBookings(ctx context.Context, date, email, treatment string) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{
		"appointmentDate": date,
		"email":           email,
		"treatment":       treatment,
	})
}

func (s *MongoStore) InsertBooking(ctx context.Context, b *models.Booking) (primitive.ObjectID, error) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(bookingsCollection).InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return b.ID, nil
}

func (s *MongoStore) GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Collection(bookingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *MongoStore) MarkBookingPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error {
	bookings := s.db.Collection(bookingsCollection)
	filter := bson.M{"_id": id, "paid": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"paid": true, "transactionId": transactionID}}
	result, err := bookings.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}
	count, err := bookings.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyPaid
}

func (s *MongoStore) UnmarkBookingPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error {
	filter := bson.M{"_id": id, "transactionId": transactionID}
	update := bson.M{"$set": bson.M{"paid": false}, "$unset": bson.M{"transactionId": ""}}
	result, err := s.db.Collection(bookingsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) setRole(ctx context.Context, filter bson.M, role string) (int64, error) {
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx, filter, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return 0, err
	}
	if result.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return result.ModifiedCount, nil
}

func (s *MongoStore) SetRoleByID(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	return s.setRole(ctx, bson.M{"_id": id}, role)
}

func (s *MongoStore) SetRoleByEmail(ctx context.Context, email, role string) (int64, error) {
	return s.setRole(ctx, bson.M{"email": email}, role)
}

func (s *MongoStore) CreateDoctor(ctx context.Context, d *models.Doctor) (primitive.ObjectID, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(doctorsCollection).InsertOne(ctx, d); err != nil {
		return primitive.NilObjectID, err
	}
	return d.ID, nil
}

func (s *MongoStore) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	cursor, err := s.db.Collection(doctorsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	doctors := make([]models.Doctor, 0)
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *MongoStore) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.db.Collection(doctorsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertPayment(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(paymentsCollection).InsertOne(ctx, p); err != nil {
		return primitive.NilObjectID, err
	}
	return p.ID, nil
}

var _ Store = (*MongoStore)(nil)
