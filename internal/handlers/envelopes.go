package handlers

import (
	"net/http"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/cardfile/cardfile/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// EnvelopeHandler handles envelope-related requests
type EnvelopeHandler struct {
	envelopes database.EnvelopeRepositoryInterface
}

// NewEnvelopeHandler creates a new envelope handler
func NewEnvelopeHandler(envelopes database.EnvelopeRepositoryInterface) *EnvelopeHandler {
	return &EnvelopeHandler{envelopes: envelopes}
}

// RegisterRoutes registers envelope routes on the given router.
// The router should already have the /envelopes prefix.
func (h *EnvelopeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEnvelopes).Methods("GET")
	r.HandleFunc("", h.CreateEnvelope).Methods("POST")
	r.HandleFunc("/merge", h.MergeEnvelopes).Methods("POST")
	r.HandleFunc("/{id}", h.GetEnvelope).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateEnvelope).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteEnvelope).Methods("DELETE")
	r.HandleFunc("/{id}/stats", h.EnvelopeStats).Methods("GET")
}

// CreateEnvelopeRequest represents a create envelope request
type CreateEnvelopeRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Description  string   `json:"description,omitempty" validate:"max=2000"`
	EnvelopeType string   `json:"envelope_type,omitempty" validate:"omitempty,oneof=project company person theme"`
	Keywords     []string `json:"keywords,omitempty"`
}

// UpdateEnvelopeRequest represents a partial envelope update
type UpdateEnvelopeRequest struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	EnvelopeType *string  `json:"envelope_type,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// MergeEnvelopesRequest names a target envelope and the sources to fold into it
type MergeEnvelopesRequest struct {
	TargetID  uuid.UUID   `json:"target_id" validate:"required"`
	SourceIDs []uuid.UUID `json:"source_ids" validate:"required,min=1"`
}

// ListEnvelopes lists all envelopes with their card counts
func (h *EnvelopeHandler) ListEnvelopes(w http.ResponseWriter, r *http.Request) {
	envelopes, err := h.envelopes.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve envelopes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"envelopes": envelopes,
		"total":     len(envelopes),
	})
}

// CreateEnvelope creates a new envelope
func (h *EnvelopeHandler) CreateEnvelope(w http.ResponseWriter, r *http.Request) {
	var req CreateEnvelopeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "name is required; envelope_type must be project, company, person, or theme")
		return
	}

	envelope := &models.Envelope{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  validation.SanitizeText(req.Description),
		EnvelopeType: req.EnvelopeType,
		Keywords:     req.Keywords,
	}
	if envelope.Keywords == nil {
		envelope.Keywords = []string{}
	}

	if err := h.envelopes.Create(r.Context(), envelope); err != nil {
		if database.IsUniqueViolation(err) {
			respondJSONError(w, http.StatusConflict, "Conflict", "An envelope with that name already exists")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create envelope")
		return
	}

	respondJSON(w, http.StatusCreated, envelope)
}

// GetEnvelope retrieves one envelope
func (h *EnvelopeHandler) GetEnvelope(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	envelope, err := h.envelopes.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Envelope not found")
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// UpdateEnvelope applies a partial update to an envelope
func (h *EnvelopeHandler) UpdateEnvelope(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req UpdateEnvelopeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	envelope, err := h.envelopes.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Envelope not found")
		return
	}

	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "name must not be empty")
			return
		}
		envelope.Name = name
	}
	if req.Description != nil {
		envelope.Description = validation.SanitizeText(*req.Description)
	}
	if req.EnvelopeType != nil {
		envelope.EnvelopeType = *req.EnvelopeType
	}
	if req.Keywords != nil {
		envelope.Keywords = req.Keywords
	}

	if err := h.envelopes.Update(r.Context(), envelope); err != nil {
		if database.IsUniqueViolation(err) {
			respondJSONError(w, http.StatusConflict, "Conflict", "An envelope with that name already exists")
			return
		}
		respondRepoError(w, err, "Envelope not found")
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// DeleteEnvelope removes an envelope. Its cards are detached, not deleted.
func (h *EnvelopeHandler) DeleteEnvelope(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := h.envelopes.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err, "Envelope not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// EnvelopeStats summarizes the cards in an envelope
func (h *EnvelopeHandler) EnvelopeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	stats, err := h.envelopes.Stats(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Envelope not found")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// MergeEnvelopes folds the source envelopes into the target, moving their
// cards and unioning keywords
func (h *EnvelopeHandler) MergeEnvelopes(w http.ResponseWriter, r *http.Request) {
	var req MergeEnvelopesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "target_id and at least one source_id are required")
		return
	}

	merged, err := h.envelopes.Merge(r.Context(), req.TargetID, req.SourceIDs)
	if err != nil {
		respondRepoError(w, err, "Envelope not found")
		return
	}

	respondJSON(w, http.StatusOK, merged)
}
