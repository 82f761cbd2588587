package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse battery staple"))
	assert.Error(t, CheckPassword(hash, "wrong password"))
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	first, err := HashPassword("hunter2")
	require.NoError(t, err)
	second, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
