package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// RoleBootstrapper assigns the initial role of a new account. The first
// account ever registered creates the role catalog and becomes admin.
type RoleBootstrapper struct {
	store ports.UserStore
	lock  ports.BootstrapLock // nil: in-process mutex only
	mu    sync.Mutex
	log   zerolog.Logger
}

func NewRoleBootstrapper(store ports.UserStore, lock ports.BootstrapLock, log zerolog.Logger) *RoleBootstrapper {
	return &RoleBootstrapper{store: store, lock: lock, log: log}
}

// AssignInitialRole grants user admin when the admin role does not exist yet,
// registrado otherwise, and returns the granted role. The check and the
// assignment run under the bootstrap lock.
func (b *RoleBootstrapper) AssignInitialRole(ctx context.Context, user *domain.User) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lock != nil {
		release, err := b.lock.Acquire(ctx)
		if err != nil {
			return "", fmt.Errorf("role bootstrap: acquire lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				b.log.Warn().Err(err).Msg("failed to release role bootstrap lock")
			}
		}()
	}

	adminExists, err := b.store.RoleExists(ctx, domain.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("role bootstrap: %w", err)
	}

	if adminExists {
		if err := b.store.AssignRole(ctx, user, domain.RoleRegistered); err != nil {
			return "", fmt.Errorf("role bootstrap: assign %s: %w", domain.RoleRegistered, err)
		}
		return domain.RoleRegistered, nil
	}

	// The admin role is created last: while it is missing the next
	// registration is still treated as the first one.
	if err := b.store.CreateRole(ctx, domain.RoleRegistered); err != nil {
		return "", fmt.Errorf("role bootstrap: create role %s: %w", domain.RoleRegistered, err)
	}
	if err := b.store.AssignRole(ctx, user, domain.RoleAdmin); err != nil {
		return "", fmt.Errorf("role bootstrap: assign %s: %w", domain.RoleAdmin, err)
	}
	if err := b.store.CreateRole(ctx, domain.RoleAdmin); err != nil {
		return "", fmt.Errorf("role bootstrap: create role %s: %w", domain.RoleAdmin, err)
	}
	b.log.Info().Str("username", user.Username).Msg("first registration, role catalog created")
	return domain.RoleAdmin, nil
}
