package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semiha11/Fincio/internal/models"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, ok, err := kv.Get(ctx, "@fincio_assets")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "@fincio_assets", "[]"))
	require.NoError(t, kv.Set(ctx, "@fincio_debts_list", "[]"))
	require.NoError(t, kv.Set(ctx, "@fincio_assets", `[{"id":"a"}]`))

	v, ok, err := kv.Get(ctx, "@fincio_assets")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, kv.MultiRemove(ctx, []string{"@fincio_assets", "@fincio_missing"}))
	assert.Equal(t, []string{"@fincio_debts_list"}, kv.Keys())
}

func TestMemoryStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.KV("device:a").Set(ctx, "k", "1"))
	_, ok, _ := s.KV("device:b").Get(ctx, "k")
	assert.False(t, ok)
	v, ok, _ := s.KV("device:a").Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &models.User{Email: "Ayse@example.com", Name: "Ayşe", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "ayse@example.com"}), ErrEmailTaken)

	found, err := s.FindUserByEmail(ctx, "ayse@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = s.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
