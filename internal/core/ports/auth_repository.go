package ports

import (
	"context"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// UserStore is the identity persistence the auth service depends on.
type UserStore interface {
	// FindByUsername matches case-insensitively. Returns domain.ErrUserNotFound
	// when no identity has that name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns every identity ordered by username.
	List(ctx context.Context) ([]*domain.User, error)
	VerifyPassword(user *domain.User, plaintext string) bool
	// CreateIdentity hashes the password and enforces uniqueness and the
	// password policy. Rule failures come back as *domain.ValidationError.
	CreateIdentity(ctx context.Context, username, plaintext, name string) (*domain.User, error)
	// DeleteIdentity removes an identity whose registration did not complete.
	DeleteIdentity(ctx context.Context, user *domain.User) error
	RolesOf(ctx context.Context, user *domain.User) ([]string, error)
	RoleExists(ctx context.Context, name string) (bool, error)
	// CreateRole is idempotent: creating an existing role is not an error.
	CreateRole(ctx context.Context, name string) error
	AssignRole(ctx context.Context, user *domain.User, name string) error
}

// PasswordHasher hashes and checks plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// BootstrapLock serialises the first-registration role bootstrap across
// processes.
type BootstrapLock interface {
	// Acquire blocks until the lock is held or ctx is done. The returned
	// release func must be called once.
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}
