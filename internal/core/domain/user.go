package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	// RoleAdmin is the elevated role granted to the first registered account.
	RoleAdmin = "admin"
	// RoleRegistered is the default role for every later account.
	RoleRegistered = "registrado"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNoRoleAssigned = errors.New("user has no role assigned")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// User models a registered identity. PasswordHash never leaves the service.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the public projection of a User.
type UserSummary struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles,omitempty"`
}

// Summary returns the credential-free view of u.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return &UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Roles: roles}
}

// NormalizeUsername is the key used for case-insensitive username lookups.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// TokenClaims is what a verified access token asserts.
type TokenClaims struct {
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
