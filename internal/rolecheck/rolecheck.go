package rolecheck

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultPrefixes are the local parts commonly used for function mailboxes
// rather than personal ones.
var DefaultPrefixes = []string{
	"admin", "administrator", "support", "help", "info", "contact",
	"sales", "marketing", "noreply", "no-reply", "postmaster", "webmaster",
	"hostmaster", "abuse", "security", "privacy", "legal", "billing",
	"accounts", "hr", "jobs", "careers",
}

// separators may follow a role prefix in the local part, e.g. admin.team@
var separators = []string{".", "+", "-"}

// Checker provides functionality to check if a local part looks like a role account
type Checker struct {
	prefixes []string
	logger   *zap.Logger
}

// NewChecker creates a new role account checker. An empty prefix list falls
// back to DefaultPrefixes.
func NewChecker(prefixes []string, logger *zap.Logger) *Checker {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}

	// Normalize prefixes (lowercase)
	normalized := make([]string, len(prefixes))
	for i, p := range prefixes {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}

	if logger != nil {
		logger.Debug("Initialized role account checker", zap.Int("prefix_count", len(normalized)))
	}

	return &Checker{
		prefixes: normalized,
		logger:   logger,
	}
}

// IsRoleAccount checks whether the local part is a role prefix, either
// exactly or followed by a separator (admin@, admin.team@, admin+tag@).
func (c *Checker) IsRoleAccount(localPart string) bool {
	local := strings.ToLower(localPart)
	for _, prefix := range c.prefixes {
		if local == prefix {
			return true
		}
		for _, sep := range separators {
			if strings.HasPrefix(local, prefix+sep) {
				return true
			}
		}
	}
	return false
}
