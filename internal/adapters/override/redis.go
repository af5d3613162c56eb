package override

import (
	"context"
	"fmt"
	"sort"

	"github.com/mikey/email-trust/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore is a Redis implementation of the Store interface. Each user
// gets one set per partition; entry values are the set members.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis override store
func NewRedisStore(addr string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	// Test the connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func overrideKey(userID string, partition core.OverridePartition) string {
	return fmt.Sprintf("overrides:%s:%s", userID, partition)
}

// Resolve returns the override decision for this user and address
func (s *RedisStore) Resolve(ctx context.Context, userID string, email string) (core.OverrideDecision, error) {
	values := matchValues(email)

	members := make([]interface{}, len(values))
	for i, v := range values {
		members[i] = v
	}

	allowHits, err := s.client.SMIsMember(ctx, overrideKey(userID, core.PartitionAllow), members...).Result()
	if err != nil {
		return core.OverrideNone, fmt.Errorf("failed to check allow partition: %w", err)
	}
	blockHits, err := s.client.SMIsMember(ctx, overrideKey(userID, core.PartitionBlock), members...).Result()
	if err != nil {
		return core.OverrideNone, fmt.Errorf("failed to check block partition: %w", err)
	}

	var hasAllow, hasBlock bool
	for _, hit := range allowHits {
		hasAllow = hasAllow || hit
	}
	for _, hit := range blockHits {
		hasBlock = hasBlock || hit
	}
	return decide(hasAllow, hasBlock), nil
}

// Add inserts a block or allow entry
func (s *RedisStore) Add(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	value = normalizeValue(value)
	if value == "" {
		return ErrEmptyValue
	}
	if err := s.client.SAdd(ctx, overrideKey(userID, partition), value).Err(); err != nil {
		return fmt.Errorf("failed to add override entry: %w", err)
	}
	return nil
}

// Remove deletes an entry from one partition
func (s *RedisStore) Remove(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	removed, err := s.client.SRem(ctx, overrideKey(userID, partition), normalizeValue(value)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove override entry: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entries for a user, block partition first. Redis does
// not keep creation times, so CreatedAt is zero here.
func (s *RedisStore) List(ctx context.Context, userID string) ([]core.OverrideEntry, error) {
	var entries []core.OverrideEntry
	for _, partition := range []core.OverridePartition{core.PartitionBlock, core.PartitionAllow} {
		values, err := s.client.SMembers(ctx, overrideKey(userID, partition)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list override entries: %w", err)
		}
		sort.Strings(values)
		for _, value := range values {
			entries = append(entries, core.OverrideEntry{
				Value:     value,
				Kind:      core.KindOfValue(value),
				Partition: partition,
			})
		}
	}
	return entries, nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
