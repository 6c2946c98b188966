package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("till-1234")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "till-1234"))
	assert.False(t, VerifyPassword(hash, "till-1235"))
	assert.False(t, VerifyPassword(hash, ""))
}
