package override

import (
	"context"
	"testing"

	"github.com/mikey/email-trust/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStoreResolve(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	require.NoError(t, store.Add(ctx, "user-1", "Spammer@X.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "shady.example", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "friend@shady.example", core.PartitionAllow))

	tests := []struct {
		name   string
		userID string
		email  string
		want   core.OverrideDecision
	}{
		{"email block match", "user-1", "spammer@x.com", core.OverrideBlocked},
		{"domain block match", "user-1", "anyone@shady.example", core.OverrideBlocked},
		{"allow wins over domain block", "user-1", "friend@shady.example", core.OverrideAllowed},
		{"no entries", "user-1", "clean@example.com", core.OverrideNone},
		{"unknown user", "user-2", "spammer@x.com", core.OverrideNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := store.Resolve(ctx, tt.userID, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision)
		})
	}
}

func TestMemoryStoreAllowWinsWhenValueInBothPartitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	require.NoError(t, store.Add(ctx, "user-1", "both@x.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "both@x.com", core.PartitionAllow))

	decision, err := store.Resolve(ctx, "user-1", "both@x.com")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideAllowed, decision)
}

func TestMemoryStoreAddValidation(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())

	err := store.Add(context.Background(), "user-1", "   ", core.PartitionBlock)
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	require.NoError(t, store.Add(ctx, "user-1", "spammer@x.com", core.PartitionBlock))
	require.NoError(t, store.Remove(ctx, "user-1", "spammer@x.com", core.PartitionBlock))

	decision, err := store.Resolve(ctx, "user-1", "spammer@x.com")
	require.NoError(t, err)
	assert.Equal(t, core.OverrideNone, decision)

	assert.ErrorIs(t, store.Remove(ctx, "user-1", "spammer@x.com", core.PartitionBlock), ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, "user-9", "spammer@x.com", core.PartitionBlock), ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	require.NoError(t, store.Add(ctx, "user-1", "b@x.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "a@x.com", core.PartitionBlock))
	require.NoError(t, store.Add(ctx, "user-1", "trusted.example", core.PartitionAllow))

	entries, err := store.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a@x.com", entries[0].Value)
	assert.Equal(t, core.OverrideKindEmail, entries[0].Kind)
	assert.Equal(t, core.PartitionBlock, entries[0].Partition)
	assert.Equal(t, "b@x.com", entries[1].Value)
	assert.Equal(t, "trusted.example", entries[2].Value)
	assert.Equal(t, core.OverrideKindDomain, entries[2].Kind)
	assert.Equal(t, core.PartitionAllow, entries[2].Partition)
}
