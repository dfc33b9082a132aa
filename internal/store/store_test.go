package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore()

	_, ok, err := s.Get("grandson_auth")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("grandson_auth", `{"token":"abc"}`))

	value, ok, err := s.Get("grandson_auth")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"token":"abc"}`, value)

	require.NoError(t, s.Delete("grandson_auth"))

	_, ok, err = s.Get("grandson_auth")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir(), zerolog.Nop())

	_, ok, err := s.Get("grandson_cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("grandson_cart", `[{"productId":"p-1"}]`))

	value, ok, err := s.Get("grandson_cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"productId":"p-1"}]`, value)
}

func TestFileStore_OverwriteReplacesValue(t *testing.T) {
	s := NewFileStore(t.TempDir(), zerolog.Nop())

	require.NoError(t, s.Set("grandson_cart", "[]"))
	require.NoError(t, s.Set("grandson_cart", `[{"productId":"p-2"}]`))

	value, ok, err := s.Get("grandson_cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"productId":"p-2"}]`, value)
}

func TestFileStore_DeleteMissingKey(t *testing.T) {
	s := NewFileStore(t.TempDir(), zerolog.Nop())

	assert.NoError(t, s.Delete("never-written"))
}
