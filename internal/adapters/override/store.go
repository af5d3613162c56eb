package override

import (
	"context"
	"errors"
	"strings"

	"github.com/mikey/email-trust/internal/core"
)

var (
	// ErrNotFound is returned when an override entry does not exist
	ErrNotFound = errors.New("override entry not found")
	// ErrEmptyValue is returned when an entry value is blank
	ErrEmptyValue = errors.New("override value must not be empty")
)

// Store is a per-user block/allow list. The core only consumes Resolve;
// the management operations exist for the list-management surface.
type Store interface {
	core.OverrideResolver

	// Add inserts a block or allow entry. The value is a full address
	// or a bare domain; it is normalized to lowercase.
	Add(ctx context.Context, userID string, value string, partition core.OverridePartition) error

	// Remove deletes an entry from one partition
	Remove(ctx context.Context, userID string, value string, partition core.OverridePartition) error

	// List returns all entries for a user
	List(ctx context.Context, userID string) ([]core.OverrideEntry, error)
}

// normalizeValue lower-cases and trims an entry value
func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// matchValues returns the candidate values an address resolves against:
// the full address and its domain
func matchValues(email string) []string {
	_, domain := core.SplitAddress(email)
	if domain == "" {
		return []string{strings.ToLower(email)}
	}
	return []string{strings.ToLower(email), domain}
}

// decide collapses partition membership into a decision; an allow entry
// always wins over a block entry
func decide(hasAllow, hasBlock bool) core.OverrideDecision {
	switch {
	case hasAllow:
		return core.OverrideAllowed
	case hasBlock:
		return core.OverrideBlocked
	default:
		return core.OverrideNone
	}
}
