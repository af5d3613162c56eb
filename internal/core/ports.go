package core

import (
	"context"
)

// ListFetcher defines the interface for retrieving a raw domain list
type ListFetcher interface {
	// Fetch retrieves one newline-delimited domain list, trying each
	// configured source in order. For the allowed list a total failure
	// collapses to an empty result instead of an error.
	Fetch(ctx context.Context, kind ListKind) ([]string, ListSource, error)
}

// DomainListProvider defines the interface for reading the current domain sets
type DomainListProvider interface {
	// CurrentSets returns the committed disposable and allowed sets,
	// refreshing them first if they are stale
	CurrentSets(ctx context.Context) (disposable *DomainSet, allowed *DomainSet)
}

// OverrideResolver defines the interface for per-user override lookups
type OverrideResolver interface {
	// Resolve returns the override decision for this user and address.
	// An allow entry wins over a block entry for the same value.
	Resolve(ctx context.Context, userID string, email string) (OverrideDecision, error)
}

// MXChecker defines the interface for mail-exchanger lookups
type MXChecker interface {
	// HasMX reports whether the domain appears to accept mail
	HasMX(ctx context.Context, domain string) bool
}
