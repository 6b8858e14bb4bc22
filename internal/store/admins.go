package store

import (
	"context"
	"time"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

func AdminFromRecord(r *core.Record) *models.AdminUser {
	return &models.AdminUser{
		ID:          r.Id,
		Email:       r.Email(),
		Name:        r.GetString("name"),
		Role:        r.GetString("role"),
		LastLoginAt: timePtr(r.GetDateTime("last_login_at")),
	}
}

func (s *Store) FindAdminByEmail(email string) (*core.Record, error) {
	r, err := s.app.FindAuthRecordByEmail(collectionAdmins, email)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrInvalidCredentials
		}
		return nil, err
	}
	return r, nil
}

func (s *Store) TouchAdminLogin(ctx context.Context, r *core.Record, at time.Time) error {
	r.Set("last_login_at", at)
	return s.app.SaveWithContext(ctx, r)
}

// EnsureAdmin creates a SUPER_ADMIN with the given credentials unless an
// admin with that email already exists. It reports whether one was created.
func (s *Store) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if _, err := s.app.FindAuthRecordByEmail(collectionAdmins, email); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, err
	}

	r, err := s.newRecord(collectionAdmins)
	if err != nil {
		return false, err
	}
	r.SetEmail(email)
	r.SetPassword(password)
	r.SetVerified(true)
	r.Set("name", name)
	r.Set("role", "SUPER_ADMIN")
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}
