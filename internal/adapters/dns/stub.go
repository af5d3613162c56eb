package dns

import (
	"context"

	"go.uber.org/zap"
)

// StubMXChecker reports every domain as having MX records. Real DNS
// resolution is intentionally not wired in; the checker sits behind the
// core.MXChecker port so a resolver-backed implementation can replace it
// without touching the scorer.
type StubMXChecker struct {
	logger *zap.Logger
}

// NewStubMXChecker creates a new stub MX checker
func NewStubMXChecker(logger *zap.Logger) *StubMXChecker {
	return &StubMXChecker{logger: logger}
}

// HasMX always reports true
func (c *StubMXChecker) HasMX(ctx context.Context, domain string) bool {
	return true
}
