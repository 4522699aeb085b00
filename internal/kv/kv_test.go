package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-server/internal/models"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "STORY_LIST")
	assert.ErrorIs(t, err, models.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "STORY_LIST", "[]"))
	v, err := s.Get(ctx, "STORY_LIST")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	assert.Equal(t, 1, s.Writes())

	require.NoError(t, s.Delete(ctx, "STORY_LIST", "missing"))
	_, err = s.Get(ctx, "STORY_LIST")
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
}

func TestMemoryStore_FailWith(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("disk full")

	s.FailWith(boom)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), boom)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Delete(ctx, "k"), boom)

	s.FailWith(nil)
	assert.NoError(t, s.Set(ctx, "k", "v"))
}

func TestPrefixed(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	alice := Prefixed(inner, "user:alice:")
	bob := Prefixed(inner, "user:bob:")

	require.NoError(t, alice.Set(ctx, "token", "a"))
	require.NoError(t, bob.Set(ctx, "token", "b"))

	v, err := inner.Get(ctx, "user:alice:token")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = bob.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, alice.Delete(ctx, "token"))
	_, err = alice.Get(ctx, "token")
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
	_, err = bob.Get(ctx, "token")
	assert.NoError(t, err)
}
