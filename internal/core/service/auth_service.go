package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	store        ports.UserStore
	verifier     *CredentialVerifier
	issuer       *TokenIssuer
	bootstrapper *RoleBootstrapper
	log          zerolog.Logger
}

func NewAuthService(store ports.UserStore, issuer *TokenIssuer, bootstrapper *RoleBootstrapper, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		verifier:     NewCredentialVerifier(store),
		issuer:       issuer,
		bootstrapper: bootstrapper,
		log:          log,
	}
}

// Register creates the account and grants its initial role. Store rule
// failures (duplicate username, weak password) are returned unchanged. If
// the role cannot be granted the account is removed again.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.UserSummary, error) {
	user, err := s.store.CreateIdentity(ctx, input.Username, input.Password, input.Name)
	if err != nil {
		return nil, err
	}

	role, err := s.bootstrapper.AssignInitialRole(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("username", user.Username).Msg("role assignment failed")
		// An identity without a role can never log in; drop it so the
		// username can register again.
		if delErr := s.store.DeleteIdentity(context.WithoutCancel(ctx), user); delErr != nil {
			s.log.Error().Err(delErr).Str("username", user.Username).Msg("failed to remove unfinished identity")
		}
		return nil, err
	}
	user.Roles = []string{role}

	s.log.Info().Str("username", user.Username).Str("role", role).Msg("user registered")
	return user.Summary(), nil
}

// Login issues a token for valid credentials. Wrong credentials are not an
// error: the result carries an empty token and no user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Debug().Str("username", username).Msg("login rejected")
		return &ports.LoginResult{}, nil
	}

	roles, err := s.store.RolesOf(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("login %s: %w", user.Username, domain.ErrNoRoleAssigned)
	}
	user.Roles = roles

	token, _, err := s.issuer.Issue(user.Username, roles[0])
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{Token: token, User: user.Summary()}, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.UserSummary, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.UserSummary, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Summary(), nil
}
