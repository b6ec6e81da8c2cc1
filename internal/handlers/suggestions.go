package handlers

import (
	"context"
	"net/http"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Analyzer runs a suggestion analysis on demand. Satisfied by think.Engine.
type Analyzer interface {
	Analyze(ctx context.Context) ([]*models.Suggestion, error)
}

// SuggestionHandler handles suggestion and analysis requests
type SuggestionHandler struct {
	suggestions database.SuggestionRepositoryInterface
	analyzer    Analyzer
	logger      *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestions database.SuggestionRepositoryInterface, analyzer Analyzer, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// RegisterRoutes registers suggestion routes on the given router.
// The router should already have the /suggestions prefix.
func (h *SuggestionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPending).Methods("GET")
	r.HandleFunc("/{id}/acknowledge", h.Acknowledge).Methods("POST")
	r.HandleFunc("/{id}/dismiss", h.Dismiss).Methods("POST")
}

// RunAnalysis runs the suggestion engine synchronously and returns the newly
// created suggestions. Partial persistence failures still return the stored
// subset.
func (h *SuggestionHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	created, err := h.analyzer.Analyze(r.Context())
	if err != nil {
		if len(created) == 0 {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Analysis failed")
			return
		}
		h.logger.Warn("analysis_partial_failure",
			zap.Int("stored", len(created)),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": created,
		"total":       len(created),
	})
}

// ListPending lists pending suggestions, newest first
func (h *SuggestionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.suggestions.ListPending(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve suggestions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

// Acknowledge marks a suggestion acknowledged
func (h *SuggestionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.SuggestionStatusAcknowledged)
}

// Dismiss marks a suggestion dismissed
func (h *SuggestionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.SuggestionStatusDismissed)
}

func (h *SuggestionHandler) setStatus(w http.ResponseWriter, r *http.Request, status models.SuggestionStatus) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := h.suggestions.SetStatus(r.Context(), id, status); err != nil {
		respondRepoError(w, err, "Suggestion not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": status,
	})
}
