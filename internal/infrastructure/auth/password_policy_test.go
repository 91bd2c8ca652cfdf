package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordPolicy_AcceptsStrongPassword(t *testing.T) {
	assert.Empty(t, DefaultPasswordPolicy().Check("Secr3t!"))
}

func TestPasswordPolicy_ReportsEveryBrokenRule(t *testing.T) {
	fails := DefaultPasswordPolicy().Check("abc")
	require.Len(t, fails, 4)
	for _, f := range fails {
		assert.Equal(t, "password", f.Field)
	}
}

func TestPasswordPolicy_ZeroValueAcceptsAnything(t *testing.T) {
	assert.Empty(t, PasswordPolicy{}.Check(""))
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!", hash)
	assert.True(t, h.Check("Secr3t!", hash))
	assert.False(t, h.Check("wrong", hash))
}
