package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/store"
)

type DoctorService struct {
	store store.DoctorStore
	log   logrus.FieldLogger
}

func NewDoctorService(s store.DoctorStore, log logrus.FieldLogger) *DoctorService {
	return &DoctorService{store: s, log: log}
}

func (s *DoctorService) Create(ctx context.Context, actor Identity, d *models.Doctor) (primitive.ObjectID, error) {
	if err := Authorize(actor, Resource{Kind: ResourceDoctor}, ActionCreate); err != nil {
		return primitive.NilObjectID, err
	}
	d.ID = primitive.NilObjectID
	id, err := s.store.CreateDoctor(ctx, d)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert doctor: %w", err)
	}
	s.log.WithField("doctor_id", id.Hex()).Info("doctor added")
	return id, nil
}

func (s *DoctorService) List(ctx context.Context, actor Identity) ([]models.Doctor, error) {
	if err := Authorize(actor, Resource{Kind: ResourceDoctor}, ActionRead); err != nil {
		return nil, err
	}
	return s.store.ListDoctors(ctx)
}

func (s *DoctorService) Delete(ctx context.Context, actor Identity, id primitive.ObjectID) error {
	if err := Authorize(actor, Resource{Kind: ResourceDoctor}, ActionDelete); err != nil {
		return err
	}
	err := s.store.DeleteDoctor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("doctor %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	s.log.WithField("doctor_id", id.Hex()).Info("doctor removed")
	return nil
}
