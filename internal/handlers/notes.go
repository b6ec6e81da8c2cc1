package handlers

import (
	"errors"
	"net/http"

	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/cardfile/cardfile/internal/validation"
	"github.com/gorilla/mux"
)

const (
	// MaxNoteLength is the maximum length for a raw note
	MaxNoteLength = 10000
	// MaxBatchSize caps how many notes a single batch request may carry
	MaxBatchSize = 50
)

// NoteHandler handles note ingestion requests
type NoteHandler struct {
	pipeline *ingest.Pipeline
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(pipeline *ingest.Pipeline) *NoteHandler {
	return &NoteHandler{pipeline: pipeline}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /notes prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ProcessNote).Methods("POST")
	r.HandleFunc("/batch", h.BatchProcess).Methods("POST")
}

// ProcessNoteRequest represents a note ingestion request
type ProcessNoteRequest struct {
	Note string `json:"note" validate:"required,min=1,max=10000"`
}

// BatchProcessRequest represents a batch note ingestion request
type BatchProcessRequest struct {
	Notes []string `json:"notes" validate:"required,min=1,max=50,dive,max=10000"`
}

// ProcessNote turns one raw note into a stored card
func (h *NoteHandler) ProcessNote(w http.ResponseWriter, r *http.Request) {
	var req ProcessNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Note = validation.SanitizeText(req.Note)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "note is required and must be at most 10000 characters")
		return
	}

	result, err := h.pipeline.ProcessNote(r.Context(), req.Note)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyNote) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "note must not be empty")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process note")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// BatchProcess ingests several notes, isolating per-note failures
func (h *NoteHandler) BatchProcess(w http.ResponseWriter, r *http.Request) {
	var req BatchProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	for i, note := range req.Notes {
		req.Notes[i] = validation.SanitizeText(note)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "notes must hold between 1 and 50 entries of at most 10000 characters")
		return
	}

	items := h.pipeline.BatchProcess(r.Context(), req.Notes)
	respondJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"total":   len(items),
	})
}
