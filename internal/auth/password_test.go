package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, pw := range []string{"pass1234", "correct horse battery staple", "ünïcødé-🔑"} {
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, digest)
		assert.True(t, h.Verify(pw, digest), "same plaintext must verify")
		assert.False(t, h.Verify(pw+"x", digest), "different plaintext must not verify")
		assert.False(t, h.Verify("", digest))
	}
}

func TestHasherSalts(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasherMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("pass1234", ""))
	assert.False(t, h.Verify("pass1234", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("pass1234", "$2a$10$short"))
}

func TestHasherRejectsEmpty(t *testing.T) {
	_, err := Hasher{}.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewHasherCostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}
