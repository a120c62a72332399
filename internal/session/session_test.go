package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycofy/internal/database"
)

func TestTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CanonicalWins", func(t *testing.T) {
		kv := NewMemoryKV()
		kv.Set(ctx, "jwt", "legacy")
		kv.Set(ctx, CanonicalKey, "canonical")

		tok, err := NewTokenStore(kv).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "canonical", tok)
	})

	t.Run("LegacyOrder", func(t *testing.T) {
		kv := NewMemoryKV()
		kv.Set(ctx, "jwt", "d")
		kv.Set(ctx, "auth_token", "c")
		kv.Set(ctx, "token", "")
		kv.Set(ctx, "access_token", "a")
		s := NewTokenStore(kv)

		tok, _ := s.Get(ctx)
		assert.Equal(t, "a", tok)

		kv.Delete(ctx, "access_token")
		tok, _ = s.Get(ctx)
		assert.Equal(t, "c", tok, "empty values are skipped")
	})

	t.Run("SetWritesCanonicalOnly", func(t *testing.T) {
		kv := NewMemoryKV()
		s := NewTokenStore(kv)
		require.NoError(t, s.Set(ctx, "t1"))

		v, ok, _ := kv.Get(ctx, CanonicalKey)
		assert.True(t, ok)
		assert.Equal(t, "t1", v)
		for _, k := range LegacyKeys {
			_, ok, _ := kv.Get(ctx, k)
			assert.False(t, ok, k)
		}
	})

	t.Run("ClearRemovesAll", func(t *testing.T) {
		kv := NewMemoryKV()
		kv.Set(ctx, CanonicalKey, "x")
		for _, k := range LegacyKeys {
			kv.Set(ctx, k, "y")
		}
		s := NewTokenStore(kv)
		require.NoError(t, s.Clear(ctx))

		tok, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, tok)
	})
}

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer db.Close()

	kv := NewSQLiteKV(db.SQL)

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, _ = kv.Get(ctx, "k")
	assert.False(t, ok)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.Set(ctx, "access_token", "old")
	store := NewTokenStore(kv)

	s, err := Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "old", s.Token())

	require.NoError(t, s.SetToken(ctx, "new"))
	tok, _ := store.Get(ctx)
	assert.Equal(t, "new", tok)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.Authenticated())
	tok, _ = store.Get(ctx)
	assert.Empty(t, tok)

	t.Run("InMemory", func(t *testing.T) {
		s, err := Load(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, s.SetToken(ctx, "x"))
		assert.Equal(t, "x", s.Token())
		require.NoError(t, s.Clear(ctx))
	})
}
