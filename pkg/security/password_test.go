package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, h.Compare(hash, "password123"))
	assert.Error(t, h.Compare(hash, "password124"))
}

func TestBcryptHasher_TooShort(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash("abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
