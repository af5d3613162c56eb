package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/config"
	"github.com/mikey/email-trust/internal/core"
	"github.com/mikey/email-trust/internal/domainlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeValidator struct {
	lastEmail  string
	lastUserID string
	result     *core.ValidationResult
	err        error
}

func (f *fakeValidator) Validate(ctx context.Context, email string, userID string) (*core.ValidationResult, error) {
	f.lastEmail = email
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStatusProvider struct {
	status domainlist.Status
}

func (f *fakeStatusProvider) Status() domainlist.Status {
	return f.status
}

func newTestServer(validator *fakeValidator) (*Server, *fakeValidator) {
	if validator == nil {
		validator = &fakeValidator{
			result: &core.ValidationResult{
				Email:           "user@example.com",
				Domain:          "example.com",
				Valid:           true,
				RiskLevel:       core.RiskLow,
				ConfidenceScore: 0.9,
			},
		}
	}
	lists := &fakeStatusProvider{status: domainlist.Status{
		DisposableCount:    1234,
		DisposableSource:   core.SourcePrimary,
		AllowedCount:       56,
		AllowedSource:      core.SourcePrimary,
		LastRefreshAttempt: time.Now(),
	}}
	cfg := config.ServerConfig{
		ListenAddress: ":0",
		CORSOrigins:   []string{"*"},
	}
	return NewServer(validator, lists, override.NewMemoryStore(zap.NewNop()), cfg, zap.NewNop()), validator
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestValidateEndpoint(t *testing.T) {
	server, validator := newTestServer(nil)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/validate", validateRequest{
		Email:  "User@Example.com",
		UserID: "user-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User@Example.com", validator.lastEmail)
	assert.Equal(t, "user-1", validator.lastUserID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var result core.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, core.RiskLow, result.RiskLevel)
}

func TestValidateEndpointRejectsBadInput(t *testing.T) {
	server, _ := newTestServer(&fakeValidator{err: core.ErrEmptyEmail})
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/validate", validateRequest{Email: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/validate", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(nil)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Lists  domainlist.Status `json:"lists"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1234, body.Lists.DisposableCount)
}

func TestOverrideLifecycle(t *testing.T) {
	server, _ := newTestServer(nil)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/users/user-1/overrides/", overrideRequest{
		Value:     "spammer@x.com",
		Partition: "block",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/overrides/", nil)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var listBody struct {
		Entries []core.OverrideEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listBody))
	require.Len(t, listBody.Entries, 1)
	assert.Equal(t, "spammer@x.com", listBody.Entries[0].Value)
	assert.Equal(t, core.PartitionBlock, listBody.Entries[0].Partition)

	rec = doJSON(t, handler, http.MethodDelete, "/api/users/user-1/overrides/", overrideRequest{
		Value:     "spammer@x.com",
		Partition: "block",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/users/user-1/overrides/", overrideRequest{
		Value:     "spammer@x.com",
		Partition: "block",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverrideValidation(t *testing.T) {
	server, _ := newTestServer(nil)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/users/user-1/overrides/", overrideRequest{
		Value:     "spammer@x.com",
		Partition: "banish",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/users/user-1/overrides/", overrideRequest{
		Value:     "   ",
		Partition: "allow",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
