package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/config"
	"github.com/mikey/email-trust/internal/core"
	"github.com/mikey/email-trust/internal/domainlist"
	"go.uber.org/zap"
)

// Validator is the validation entry point the server exposes over HTTP
type Validator interface {
	Validate(ctx context.Context, email string, userID string) (*core.ValidationResult, error)
}

// ListStatusProvider reports domain list freshness for the health endpoint
type ListStatusProvider interface {
	Status() domainlist.Status
}

// Server is a thin HTTP adapter around the validator service. Auth, quota
// accounting and request logging belong to the deployment in front of it.
type Server struct {
	validator  Validator
	lists      ListStatusProvider
	store      override.Store
	logger     *zap.Logger
	cfg        config.ServerConfig
	httpServer *http.Server
}

// NewServer creates a new HTTP API server
func NewServer(
	validator Validator,
	lists ListStatusProvider,
	store override.Store,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		validator: validator,
		lists:     lists,
		store:     store,
		logger:    logger,
		cfg:       cfg,
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.requestID)

	r.Get("/health", s.handleHealth)
	r.Post("/api/validate", s.handleValidate)
	r.Route("/api/users/{userID}/overrides", func(r chi.Router) {
		r.Get("/", s.handleListOverrides)
		r.Post("/", s.handleAddOverride)
		r.Delete("/", s.handleRemoveOverride)
	})
	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("HTTP API starting", zap.String("address", s.cfg.ListenAddress))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// requestID tags every response so API consumers can reference a call
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

type validateRequest struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.validator.Validate(r.Context(), req.Email, req.UserID)
	if err != nil {
		if errors.Is(err, core.ErrEmptyEmail) {
			respondError(w, http.StatusBadRequest, "email is required")
			return
		}
		s.logger.Error("Validation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"lists":  s.lists.Status(),
	})
}

type overrideRequest struct {
	Value     string `json:"value"`
	Partition string `json:"partition"`
}

func (req *overrideRequest) partition() (core.OverridePartition, bool) {
	p := core.OverridePartition(req.Partition)
	return p, p == core.PartitionBlock || p == core.PartitionAllow
}

func (s *Server) handleAddOverride(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	partition, ok := req.partition()
	if !ok {
		respondError(w, http.StatusBadRequest, "partition must be block or allow")
		return
	}

	if err := s.store.Add(r.Context(), userID, req.Value, partition); err != nil {
		if errors.Is(err, override.ErrEmptyValue) {
			respondError(w, http.StatusBadRequest, "value is required")
			return
		}
		s.logger.Error("Failed to add override", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to add override")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"status": "created"})
}

func (s *Server) handleRemoveOverride(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	partition, ok := req.partition()
	if !ok {
		respondError(w, http.StatusBadRequest, "partition must be block or allow")
		return
	}

	if err := s.store.Remove(r.Context(), userID, req.Value, partition); err != nil {
		if errors.Is(err, override.ErrNotFound) {
			respondError(w, http.StatusNotFound, "override entry not found")
			return
		}
		s.logger.Error("Failed to remove override", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to remove override")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (s *Server) handleListOverrides(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	entries, err := s.store.List(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list overrides", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list overrides")
		return
	}
	if entries == nil {
		entries = []core.OverrideEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing useful left to do
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
