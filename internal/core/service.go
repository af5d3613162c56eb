package core

import (
	"context"
	"errors"

	"github.com/mikey/email-trust/internal/utils"
	"go.uber.org/zap"
)

// ErrEmptyEmail is returned when a validation request carries no address.
// Callers are expected to reject malformed requests before reaching the
// scorer; this is the boundary check for the service entry point.
var ErrEmptyEmail = errors.New("email must not be empty")

// ValidatorService is the core service for email validation
type ValidatorService struct {
	lists     DomainListProvider
	overrides OverrideResolver
	mx        MXChecker
	scorer    *Scorer
	text      *utils.TextProcessor
	logger    *zap.Logger
}

// NewValidatorService creates a new validator service
func NewValidatorService(
	lists DomainListProvider,
	overrides OverrideResolver,
	mx MXChecker,
	scorer *Scorer,
	text *utils.TextProcessor,
	logger *zap.Logger,
) *ValidatorService {
	return &ValidatorService{
		lists:     lists,
		overrides: overrides,
		mx:        mx,
		scorer:    scorer,
		text:      text,
		logger:    logger,
	}
}

// Validate classifies a single email address. userID is optional; when
// present the user's personal block/allow entries are consulted.
//
// Upstream list failures never surface here: the domain list provider
// degrades to stale or fallback data internally. An override lookup
// failure degrades to no override rather than failing the validation.
func (s *ValidatorService) Validate(ctx context.Context, email string, userID string) (*ValidationResult, error) {
	email = s.text.NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}

	disposableSet, allowedSet := s.lists.CurrentSets(ctx)

	override := OverrideNone
	if userID != "" {
		decision, err := s.overrides.Resolve(ctx, userID, email)
		if err != nil {
			s.logger.Warn("Override lookup failed, proceeding without override",
				zap.String("user_id", userID),
				zap.Error(err))
		} else {
			override = decision
		}
	}

	_, domain := SplitAddress(email)
	mxFound := s.mx.HasMX(ctx, domain)

	result := s.scorer.Score(email, disposableSet, allowedSet, override, mxFound)

	s.logger.Debug("Validated email",
		zap.String("email", email),
		zap.String("domain", result.Domain),
		zap.Float64("confidence_score", result.ConfidenceScore),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Bool("valid", result.Valid))

	return result, nil
}
