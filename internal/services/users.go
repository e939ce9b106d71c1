package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal/internal/models"
	"github.com/harentsoaR/doctors-portal/internal/store"
	"github.com/harentsoaR/doctors-portal/internal/utils"
)

type UserService struct {
	store      store.UserStore
	tokens     *utils.TokenManager
	bcryptCost int
	log        logrus.FieldLogger
}

func NewUserService(s store.UserStore, tokens *utils.TokenManager, bcryptCost int, log logrus.FieldLogger) *UserService {
	return &UserService{store: s, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

// Create registers a user. The role is never taken from the caller and the
// password, when given, is stored as a bcrypt hash.
func (s *UserService) Create(ctx context.Context, u *models.User, password string) (primitive.ObjectID, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return primitive.NilObjectID, invalid("email is required")
	}
	u.ID = primitive.NilObjectID
	u.Role = ""
	if password != "" {
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}

	id, err := s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return primitive.NilObjectID, fmt.Errorf("user %s: %w", u.Email, ErrAlreadyExists)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	s.log.WithField("user_id", id.Hex()).Info("user created")
	return id, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// Identity loads the caller's role. Unknown emails get an empty role.
func (s *UserService) Identity(ctx context.Context, email string) (Identity, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{Email: email}, nil
	}
	if err != nil {
		return Identity{}, err
	}
	return Identity{Email: u.Email, Role: u.Role}, nil
}

func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	id, err := s.Identity(ctx, email)
	if err != nil {
		return false, err
	}
	return id.Role == models.RoleAdmin, nil
}

// GrantAdmin elevates the user addressed by ref, which is either an
// ObjectID hex string or an email. It reports how many records changed.
func (s *UserService) GrantAdmin(ctx context.Context, actor Identity, ref string) (int64, error) {
	if err := Authorize(actor, Resource{Kind: ResourceUserRole}, ActionUpdate); err != nil {
		return 0, err
	}

	var (
		modified int64
		err      error
	)
	if oid, parseErr := primitive.ObjectIDFromHex(ref); parseErr == nil {
		modified, err = s.store.SetRoleByID(ctx, oid, models.RoleAdmin)
	} else {
		modified, err = s.store.SetRoleByEmail(ctx, ref, models.RoleAdmin)
	}
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("user %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("update user role: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user": ref, "granted_by": actor.Email}).Info("admin role granted")
	return modified, nil
}

// IssueToken returns a bearer token for a registered email.
func (s *UserService) IssueToken(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", invalid("email query parameter is required")
	}
	if _, err := s.store.FindUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrForbidden
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	return s.tokens.GenerateJWT(email)
}

// Login checks a password and returns a bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, u.Password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateJWT(u.Email)
}
