package core

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/email-trust/internal/rolecheck"
	"github.com/mikey/email-trust/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeListProvider struct {
	disposable *DomainSet
	allowed    *DomainSet
}

func (f *fakeListProvider) CurrentSets(ctx context.Context) (*DomainSet, *DomainSet) {
	return f.disposable, f.allowed
}

type fakeResolver struct {
	decision OverrideDecision
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(ctx context.Context, userID string, email string) (OverrideDecision, error) {
	f.calls++
	return f.decision, f.err
}

type fakeMXChecker struct {
	found bool
}

func (f *fakeMXChecker) HasMX(ctx context.Context, domain string) bool {
	return f.found
}

func newTestService(lists *fakeListProvider, resolver *fakeResolver, mx *fakeMXChecker) *ValidatorService {
	logger := zap.NewNop()
	return NewValidatorService(
		lists,
		resolver,
		mx,
		NewScorer(rolecheck.NewChecker(nil, logger)),
		utils.NewTextProcessor(logger),
		logger,
	)
}

func TestValidateNormalizesInput(t *testing.T) {
	svc := newTestService(
		&fakeListProvider{disposable: setOf(), allowed: setOf()},
		&fakeResolver{decision: OverrideNone},
		&fakeMXChecker{found: true},
	)

	result, err := svc.Validate(context.Background(), "  Test@Example.COM ", "")
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", result.Email)
	assert.Equal(t, "example.com", result.Domain)
	assert.True(t, result.Valid)
}

func TestValidateEmptyEmail(t *testing.T) {
	svc := newTestService(
		&fakeListProvider{disposable: setOf(), allowed: setOf()},
		&fakeResolver{decision: OverrideNone},
		&fakeMXChecker{found: true},
	)

	_, err := svc.Validate(context.Background(), "   ", "user-1")
	assert.ErrorIs(t, err, ErrEmptyEmail)
}

func TestValidateSkipsOverrideWithoutUser(t *testing.T) {
	resolver := &fakeResolver{decision: OverrideBlocked}
	svc := newTestService(
		&fakeListProvider{disposable: setOf(), allowed: setOf()},
		resolver,
		&fakeMXChecker{found: true},
	)

	result, err := svc.Validate(context.Background(), "test@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, 0, resolver.calls)
	assert.False(t, result.PersonalOverride)
	assert.True(t, result.Valid)
}

func TestValidateAppliesOverride(t *testing.T) {
	resolver := &fakeResolver{decision: OverrideBlocked}
	svc := newTestService(
		&fakeListProvider{disposable: setOf(), allowed: setOf()},
		resolver,
		&fakeMXChecker{found: true},
	)

	result, err := svc.Validate(context.Background(), "spammer@x.com", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.calls)
	assert.True(t, result.PersonalOverride)
	assert.False(t, result.Valid)
	assert.Equal(t, "Blocked by user", result.Reason)
}

func TestValidateSurvivesOverrideLookupFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("store is down")}
	svc := newTestService(
		&fakeListProvider{disposable: setOf(), allowed: setOf()},
		resolver,
		&fakeMXChecker{found: true},
	)

	result, err := svc.Validate(context.Background(), "test@example.com", "user-1")
	require.NoError(t, err, "an override lookup failure must not fail the validation")

	assert.False(t, result.PersonalOverride)
	assert.True(t, result.Valid)
}

func TestValidateUsesCurrentSets(t *testing.T) {
	svc := newTestService(
		&fakeListProvider{disposable: setOf("mailinator.com"), allowed: setOf("trusted.com")},
		&fakeResolver{decision: OverrideNone},
		&fakeMXChecker{found: true},
	)

	blocked, err := svc.Validate(context.Background(), "user@mailinator.com", "")
	require.NoError(t, err)
	assert.True(t, blocked.Disposable)
	assert.False(t, blocked.Valid)

	trusted, err := svc.Validate(context.Background(), "user@trusted.com", "")
	require.NoError(t, err)
	assert.True(t, trusted.AllowedList)
	assert.True(t, trusted.Valid)
}
