package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// CredentialVerifier checks a username/password pair against the UserStore.
type CredentialVerifier struct {
	store ports.UserStore
}

func NewCredentialVerifier(store ports.UserStore) *CredentialVerifier {
	return &CredentialVerifier{store: store}
}

// Verify returns the matching user, or nil when the credentials are wrong.
// Only store failures are returned as errors.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, nil
	}

	user, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if !v.store.VerifyPassword(user, password) {
		return nil, nil
	}
	return user, nil
}
