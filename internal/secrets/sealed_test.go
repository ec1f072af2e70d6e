package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/edushop/internal/kvstore"
)

func TestSealedStorage(t *testing.T) {
	ctx := context.Background()
	inner := kvstore.NewMemory()
	s, err := NewSealedStorage(inner, MasterKey(), "token")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "token", "abc123"))
	require.NoError(t, s.Set(ctx, "user", `{"id":"1"}`))

	raw, ok, err := inner.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, raw, "abc123")

	raw, _, _ = inner.Get(ctx, "user")
	require.Equal(t, `{"id":"1"}`, raw)

	got, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc123", got)

	require.NoError(t, s.Delete(ctx, "token", "user"))
	_, ok, err = s.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSealedStorageRejectsTamperedValue(t *testing.T) {
	ctx := context.Background()
	inner := kvstore.NewMemory()
	s, err := NewSealedStorage(inner, MasterKey(), "token")
	require.NoError(t, err)

	require.NoError(t, inner.Set(ctx, "token", "plain-text"))
	_, _, err = s.Get(ctx, "token")
	require.Error(t, err)

	other, err := NewSealedStorage(inner, make([]byte, 32), "token")
	require.NoError(t, err)
	require.NoError(t, other.Set(ctx, "token", "abc"))
	_, _, err = s.Get(ctx, "token")
	require.Error(t, err)
}

func TestNewSealedStorageKeyLength(t *testing.T) {
	_, err := NewSealedStorage(kvstore.NewMemory(), []byte("short"))
	require.Error(t, err)
	require.Len(t, MasterKey(), 32)
}
