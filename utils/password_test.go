package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, CheckPassword(hash, "correct-horse"))
	assert.False(t, CheckPassword(hash, "wrong-horse"))
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	// Telegram and OAuth accounts store no password hash at all.
	assert.False(t, CheckPassword("", "anything"))
	assert.False(t, CheckPassword("", ""))
}
