package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// ErrInvalidCredentials indicates an empty username or password on registration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore persists users keyed by username.
type UserStore interface {
	GetUser(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) error
}

// Service checks and registers operator credentials.
type Service struct {
	store  UserStore
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a credential service on top of store.
func NewService(store UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: logger,
		now:    time.Now,
	}
}

// CheckCredentials reports whether the username exists and the password matches.
// An unknown username is not an error.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.store.GetUser(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", zap.String("username", username))
		return false, nil
	}
	return true, nil
}

// AddUser registers a new user. It returns false when the username is taken.
func (s *Service) AddUser(ctx context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return false, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	err = s.store.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, models.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username))
	return true, nil
}
