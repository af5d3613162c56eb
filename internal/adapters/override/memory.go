package override

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/email-trust/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	users  map[string]map[core.OverridePartition]map[string]core.OverrideEntry
	mu     sync.RWMutex
	logger *zap.Logger
	now    func() time.Time
}

// NewMemoryStore creates a new in-memory override store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]map[core.OverridePartition]map[string]core.OverrideEntry),
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the override decision for this user and address
func (s *MemoryStore) Resolve(ctx context.Context, userID string, email string) (core.OverrideDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partitions, ok := s.users[userID]
	if !ok {
		return core.OverrideNone, nil
	}

	var hasAllow, hasBlock bool
	for _, value := range matchValues(email) {
		if _, ok := partitions[core.PartitionAllow][value]; ok {
			hasAllow = true
		}
		if _, ok := partitions[core.PartitionBlock][value]; ok {
			hasBlock = true
		}
	}
	return decide(hasAllow, hasBlock), nil
}

// Add inserts a block or allow entry
func (s *MemoryStore) Add(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	value = normalizeValue(value)
	if value == "" {
		return ErrEmptyValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	partitions, ok := s.users[userID]
	if !ok {
		partitions = map[core.OverridePartition]map[string]core.OverrideEntry{
			core.PartitionBlock: {},
			core.PartitionAllow: {},
		}
		s.users[userID] = partitions
	}

	partitions[partition][value] = core.OverrideEntry{
		Value:     value,
		Kind:      core.KindOfValue(value),
		Partition: partition,
		CreatedAt: s.now(),
	}
	return nil
}

// Remove deletes an entry from one partition
func (s *MemoryStore) Remove(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	value = normalizeValue(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	partitions, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := partitions[partition][value]; !ok {
		return ErrNotFound
	}
	delete(partitions[partition], value)
	return nil
}

// List returns all entries for a user, block partition first
func (s *MemoryStore) List(ctx context.Context, userID string) ([]core.OverrideEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partitions, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	var entries []core.OverrideEntry
	for _, partition := range []core.OverridePartition{core.PartitionBlock, core.PartitionAllow} {
		var values []string
		for value := range partitions[partition] {
			values = append(values, value)
		}
		sort.Strings(values)
		for _, value := range values {
			entries = append(entries, partitions[partition][value])
		}
	}
	return entries, nil
}
