package core

import (
	"math"
	"regexp"
	"time"

	"github.com/mikey/email-trust/internal/rolecheck"
)

// emailPattern is the syntax gate: one @, no whitespace, dotted domain
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Suggestion and reason strings are part of the API response contract
const (
	suggestionInvalidFormat = "Invalid email format"
	suggestionWhitelisted   = "Address is on your personal allow list"
	suggestionBlocked       = "Address is on your personal block list"
	suggestionDisposable    = "Domain is a known disposable email provider"
	suggestionRoleBased     = "Address appears to be a role account rather than a personal mailbox"
	suggestionNoMX          = "Domain has no MX records"
	suggestionAllowedList   = "Domain is on the trusted allow list"

	reasonInvalidFormat = "Invalid email format"
	reasonWhitelisted   = "Whitelisted by user"
	reasonBlocked       = "Blocked by user"
	reasonDisposable    = "Disposable email domain"
	reasonNoMX          = "No MX records found"
	reasonLowConfidence = "Low confidence score"
	reasonValid         = "Valid email"
)

// Scorer folds the boolean signals for an address into a confidence score,
// validity verdict and risk tier. It is deterministic for fixed inputs.
type Scorer struct {
	roles *rolecheck.Checker
	now   func() time.Time
}

// NewScorer creates a new scorer using the given role account checker
func NewScorer(roles *rolecheck.Checker) *Scorer {
	return &Scorer{
		roles: roles,
		now:   time.Now,
	}
}

// Score validates a single address against the current domain sets, the
// user's override decision and the MX signal supplied by the caller.
func (s *Scorer) Score(
	email string,
	disposableSet *DomainSet,
	allowedSet *DomainSet,
	override OverrideDecision,
	mxFound bool,
) *ValidationResult {
	result := &ValidationResult{
		Email:            email,
		PersonalOverride: override != OverrideNone,
		Timestamp:        s.now(),
	}

	// Syntax gate: short-circuit without touching any other signal
	if !emailPattern.MatchString(email) {
		result.RiskLevel = RiskHigh
		result.Suggestions = []string{suggestionInvalidFormat}
		result.Reason = reasonInvalidFormat
		return result
	}
	result.ValidSyntax = true

	local, domain := SplitAddress(email)
	result.Domain = domain

	result.Disposable = disposableSet.Contains(domain)
	result.AllowedList = allowedSet.Contains(domain)
	result.RoleBased = s.roles.IsRoleAccount(local)
	result.MXFound = mxFound

	// A personal allow entry erases the disposable classification entirely;
	// a block entry classifies the address as disposable for scoring.
	switch override {
	case OverrideAllowed:
		result.AllowedList = true
		result.Disposable = false
	case OverrideBlocked:
		result.AllowedList = false
		result.Disposable = true
	}

	score := 0.5
	if result.AllowedList {
		score += 0.4
	} else if result.Disposable {
		score -= 0.4
	}
	if result.MXFound {
		score += 0.2
	} else {
		score -= 0.3
	}
	if result.RoleBased {
		score -= 0.1
	}
	score = math.Max(0, math.Min(1, score))
	result.ConfidenceScore = math.Round(score*100) / 100

	// Strictly greater than 0.5: a score of exactly 0.5 is not valid
	result.Valid = !result.Disposable && result.ValidSyntax && result.ConfidenceScore > 0.5

	switch {
	case result.Disposable || result.ConfidenceScore < 0.3:
		result.RiskLevel = RiskHigh
	case result.ConfidenceScore < 0.6:
		result.RiskLevel = RiskMedium
	default:
		result.RiskLevel = RiskLow
	}

	result.Suggestions = s.buildSuggestions(result, override)
	result.Reason = s.buildReason(result, override)

	return result
}

// buildSuggestions assembles the suggestion list in its fixed order, with
// override notes ahead of everything else
func (s *Scorer) buildSuggestions(result *ValidationResult, override OverrideDecision) []string {
	suggestions := make([]string, 0, 4)
	if override == OverrideAllowed {
		suggestions = append(suggestions, suggestionWhitelisted)
	} else if override == OverrideBlocked {
		suggestions = append(suggestions, suggestionBlocked)
	}
	if result.Disposable {
		suggestions = append(suggestions, suggestionDisposable)
	}
	if result.RoleBased {
		suggestions = append(suggestions, suggestionRoleBased)
	}
	if !result.MXFound {
		suggestions = append(suggestions, suggestionNoMX)
	}
	if result.AllowedList {
		suggestions = append(suggestions, suggestionAllowedList)
	}
	return suggestions
}

// buildReason picks the single most significant explanation
func (s *Scorer) buildReason(result *ValidationResult, override OverrideDecision) string {
	switch {
	case override == OverrideAllowed:
		return reasonWhitelisted
	case override == OverrideBlocked:
		return reasonBlocked
	case result.Disposable:
		return reasonDisposable
	case !result.MXFound:
		return reasonNoMX
	case result.ConfidenceScore <= 0.5:
		return reasonLowConfidence
	default:
		return reasonValid
	}
}
