package jwtkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_ResolveKey(t *testing.T) {
	provider := NewStaticProvider("static-secret")

	secret, err := provider.ResolveKey("any-kid")
	require.NoError(t, err)
	assert.Equal(t, []byte("static-secret"), secret)

	// kid is ignored
	secret2, err := provider.ResolveKey("")
	require.NoError(t, err)
	assert.Equal(t, secret, secret2)
}

func TestStaticProvider_ResolveKey_EmptySecret(t *testing.T) {
	provider := NewStaticProvider("")

	_, err := provider.ResolveKey("any")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
