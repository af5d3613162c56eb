package core

import (
	"strings"
	"time"
)

// ListKind identifies one of the two upstream domain lists
type ListKind string

const (
	// ListDisposable is the blocklist of throwaway-mailbox domains
	ListDisposable ListKind = "disposable"
	// ListAllowed is the list of explicitly trusted domains
	ListAllowed ListKind = "allowed"
)

// ListSource records where the current content of a domain set came from
type ListSource string

const (
	SourcePrimary  ListSource = "primary"
	SourceFallback ListSource = "fallback"
	SourceBuiltin  ListSource = "builtin"
	SourceStale    ListSource = "stale"
	SourceNone     ListSource = "none"
)

// DomainSet is an immutable-per-refresh set of lowercase domains.
// The underlying map is never mutated after construction, so a set can be
// shared freely between concurrent readers.
type DomainSet struct {
	domains   map[string]struct{}
	fetchedAt time.Time
	source    ListSource
}

// NewDomainSet builds a set from raw list entries, lower-casing each one
func NewDomainSet(domains []string, source ListSource, fetchedAt time.Time) *DomainSet {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return &DomainSet{domains: set, fetchedAt: fetchedAt, source: source}
}

// EmptyDomainSet returns a set with no entries
func EmptyDomainSet() *DomainSet {
	return &DomainSet{domains: map[string]struct{}{}, source: SourceNone}
}

// Contains reports whether the domain is in the set
func (s *DomainSet) Contains(domain string) bool {
	_, ok := s.domains[strings.ToLower(domain)]
	return ok
}

// Len returns the number of domains in the set
func (s *DomainSet) Len() int {
	return len(s.domains)
}

// Source returns where the set's content came from
func (s *DomainSet) Source() ListSource {
	return s.source
}

// FetchedAt returns when the set's content was fetched
func (s *DomainSet) FetchedAt() time.Time {
	return s.fetchedAt
}

// WithSource returns a view of the same set re-labelled with a new source.
// The domain map is shared, not copied.
func (s *DomainSet) WithSource(source ListSource) *DomainSet {
	return &DomainSet{domains: s.domains, fetchedAt: s.fetchedAt, source: source}
}

// OverrideDecision is the outcome of a personal override lookup. The tagged
// form makes allow-over-block precedence a property of the resolver rather
// than a convention every caller must repeat.
type OverrideDecision string

const (
	OverrideNone    OverrideDecision = "none"
	OverrideBlocked OverrideDecision = "blocked"
	OverrideAllowed OverrideDecision = "allowed"
)

// OverrideKind says whether an override entry matches a full address or a domain
type OverrideKind string

const (
	OverrideKindEmail  OverrideKind = "email"
	OverrideKindDomain OverrideKind = "domain"
)

// OverridePartition is the list an override entry belongs to
type OverridePartition string

const (
	PartitionBlock OverridePartition = "block"
	PartitionAllow OverridePartition = "allow"
)

// OverrideEntry is one per-user block or allow entry
type OverrideEntry struct {
	Value     string            `json:"value"`
	Kind      OverrideKind      `json:"kind"`
	Partition OverridePartition `json:"partition"`
	CreatedAt time.Time         `json:"created_at"`
}

// KindOfValue classifies an override value: anything with an @ is a full
// address, everything else is a domain.
func KindOfValue(value string) OverrideKind {
	if strings.Contains(value, "@") {
		return OverrideKindEmail
	}
	return OverrideKindDomain
}

// RiskLevel is the coarse risk bucket for a validated address
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ValidationResult is the outcome of validating a single email address
type ValidationResult struct {
	Email            string    `json:"email"`
	Domain           string    `json:"domain"`
	ValidSyntax      bool      `json:"valid_syntax"`
	Disposable       bool      `json:"disposable"`
	RoleBased        bool      `json:"role_based"`
	MXFound          bool      `json:"mx_found"`
	AllowedList      bool      `json:"allowed_list"`
	ConfidenceScore  float64   `json:"confidence_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Valid            bool      `json:"valid"`
	Suggestions      []string  `json:"suggestions"`
	PersonalOverride bool      `json:"personal_override"`
	Reason           string    `json:"reason"`
	Timestamp        time.Time `json:"timestamp"`
}

// SplitAddress splits an email address into local part and domain, both
// lower-cased. The domain is empty when the address does not have exactly
// one @ separator.
func SplitAddress(email string) (local string, domain string) {
	parts := strings.Split(strings.ToLower(email), "@")
	if len(parts) != 2 {
		return strings.ToLower(email), ""
	}
	return parts[0], parts[1]
}
