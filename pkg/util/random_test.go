package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShareToken(t *testing.T) {
	token, err := GenerateShareToken(21)
	require.NoError(t, err)
	assert.Len(t, token, 21)

	// 只包含 URL 安全字母表中的字符
	for _, r := range token {
		assert.Contains(t, tokenCharset, string(r))
	}
}

func TestGenerateShareTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GenerateShareToken(21)
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := GeneratePasswordHash("s3cret-passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-passw0rd", hash)

	assert.True(t, CheckPasswordHash("s3cret-passw0rd", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}
