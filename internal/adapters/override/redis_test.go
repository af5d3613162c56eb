package override

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mikey/email-trust/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	server := miniredis.RunT(t)
	store, err := NewRedisStore(server.Addr(), 0, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStoreResolve(t *testing.T) {
	ctx := context.Background()
	store := newRedisTestStore(t)

	require.NoError(t, store.Add(ctx, "user-1", "Spammer@X.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "shady.example", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "friend@shady.example", core.PartitionAllow))

	decision, err := store.Resolve(ctx, "user-1", "spammer@x.com")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideBlocked, decision)

	decision, err = store.Resolve(ctx, "user-1", "anyone@shady.example")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideBlocked, decision)

	decision, err = store.Resolve(ctx, "user-1", "friend@shady.example")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideAllowed, decision, "allow wins over a domain block")

	decision, err = store.Resolve(ctx, "user-1", "clean@example.com")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideNone, decision)
}

func TestRedisStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := newRedisTestStore(t)

	require.NoError(t, store.Add(ctx, "user-1", "spammer@x.com", core.PartitionBlock))
	require.NoError(t, store.Remove(ctx, "user-1", "spammer@x.com", core.PartitionBlock))

	decision, err := store.Resolve(ctx, "user-1", "spammer@x.com")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideNone, decision)

	assert.ErrorIs(t, store.Remove(ctx, "user-1", "spammer@x.com", core.PartitionBlock), ErrNotFound)
}

func TestRedisStoreList(t *testing.T) {
	ctx := context.Background()
	store := newRedisTestStore(t)

	require.NoError(t, store.Add(ctx, "user-1", "b@x.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "a@x.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "trusted.example", core.PartitionAllow))

	entries, err := store.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a@x.com", entries[0].Value)
	assert.Equal(t, core.PartitionBlock, entries[0].Partition)
	assert.Equal(t, "b@x.com", entries[1].Value)
	assert.Equal(t, "trusted.example", entries[2].Value)
	assert.Equal(t, core.OverrideKindDomain, entries[2].Kind)
}
