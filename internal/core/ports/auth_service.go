package ports

import (
	"context"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Password string
	Name     string
}

// LoginResult is the outcome of a login. A failed login has an empty Token
// and a nil User.
type LoginResult struct {
	Token string
	User  *domain.UserSummary
}

// Authenticated reports whether the login issued a token.
func (r *LoginResult) Authenticated() bool {
	return r != nil && r.Token != ""
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.UserSummary, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]*domain.UserSummary, error)
	GetUser(ctx context.Context, id string) (*domain.UserSummary, error)
}
