package apikey_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedlists/sharedlists/internal/apikey"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func TestGenerateToken_Format(t *testing.T) {
	token, err := apikey.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, token, apikey.TokenLength)
	assert.Regexp(t, alphanumeric, token)
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := apikey.GenerateToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "token generated twice")
		seen[token] = true
	}
}

func TestHashToken(t *testing.T) {
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		apikey.HashToken("abc"),
	)
	assert.Equal(t, apikey.HashToken("same"), apikey.HashToken("same"))
	assert.NotEqual(t, apikey.HashToken("one"), apikey.HashToken("two"))
}
