package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrition-advisor/internal/domain/session"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess := session.New(time.Now(), time.Hour)

	require.NoError(t, store.Put(ctx, sess))
	got, ok, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, sess, got)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, ok, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stale := session.New(now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, store.Put(ctx, stale))
	_, ok, err := store.Get(ctx, stale.ID)
	require.NoError(t, err)
	require.False(t, ok)

	old := session.New(now, time.Minute)
	require.NoError(t, store.Put(ctx, old))
	now = now.Add(time.Hour)
	fresh := session.New(now, time.Hour)
	require.NoError(t, store.Put(ctx, fresh))
	require.Equal(t, 1, store.Len())
}
