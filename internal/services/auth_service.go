package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both failure
// paths take about as long as a real password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("easel-ticket-dummy-password"), bcrypt.DefaultCost)

type LoginResult struct {
	Token string            `json:"token"`
	Admin *models.AdminUser `json:"admin"`
}

type AuthService struct {
	store *store.Store
	clock clock.Clock
}

func NewAuthService(s *store.Store, clk clock.Clock) *AuthService {
	return &AuthService{store: s, clock: clk}
}

// Login checks admin credentials and issues an auth token. Every mismatch
// yields ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, status.ErrInvalidCredentials
	}

	r, err := s.store.FindAdminByEmail(email)
	if errors.Is(err, status.ErrInvalidCredentials) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, status.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !r.ValidatePassword(password) {
		return nil, status.ErrInvalidCredentials
	}

	token, err := r.NewAuthToken()
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchAdminLogin(ctx, r, s.clock.Now()); err != nil {
		slog.Warn("update last login", "adminID", r.Id, "error", err)
	}

	return &LoginResult{Token: token, Admin: store.AdminFromRecord(r)}, nil
}
