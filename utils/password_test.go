package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-pw")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-pw", hash)

	assert.NoError(t, CheckPassword(hash, "correct-pw"))
	assert.Error(t, CheckPassword(hash, "wrong-pw"))
}

func TestHashPasswordSaltedPerCall(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NoError(t, CheckPassword(h1, "same-password"))
	assert.NoError(t, CheckPassword(h2, "same-password"))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	// fails closed instead of panicking
	assert.Error(t, CheckPassword("not-a-bcrypt-hash", "anything"))
	assert.Error(t, CheckPassword("", "anything"))
}
