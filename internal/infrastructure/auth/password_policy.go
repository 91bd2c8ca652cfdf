package auth

import (
	"fmt"
	"unicode"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// PasswordPolicy is the strength rule applied when an identity is created.
type PasswordPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy: six characters with a digit, a lower-case letter, an
// upper-case letter and a symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     6,
		RequireDigit:  true,
		RequireLower:  true,
		RequireUpper:  true,
		RequireSymbol: true,
	}
}

// Check returns one FieldError per broken rule.
func (p PasswordPolicy) Check(password string) []domain.FieldError {
	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}

	var out []domain.FieldError
	add := func(msg string) {
		out = append(out, domain.FieldError{Field: "password", Message: msg})
	}
	if len([]rune(password)) < p.MinLength {
		add(fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if p.RequireDigit && !digit {
		add("password must contain a digit")
	}
	if p.RequireLower && !lower {
		add("password must contain a lower-case letter")
	}
	if p.RequireUpper && !upper {
		add("password must contain an upper-case letter")
	}
	if p.RequireSymbol && !symbol {
		add("password must contain a non-alphanumeric character")
	}
	return out
}
