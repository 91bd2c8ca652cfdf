// Package auth holds the password primitives behind the user store.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/peliculas/catalog-api/internal/core/ports"
)

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a ports.PasswordHasher. cost <= 0 uses
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) ports.PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(b), err
}

func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
