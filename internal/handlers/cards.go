package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/models"
	"github.com/cardfile/cardfile/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CardHandler handles card-related requests
type CardHandler struct {
	cards database.CardRepositoryInterface
}

// NewCardHandler creates a new card handler
func NewCardHandler(cards database.CardRepositoryInterface) *CardHandler {
	return &CardHandler{cards: cards}
}

// RegisterRoutes registers card routes on the given router.
// The router should already have the /cards prefix.
func (h *CardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCards).Methods("GET")
	r.HandleFunc("/search", h.SearchCards).Methods("GET")
	r.HandleFunc("/{id}", h.GetCard).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateCard).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteCard).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteCard).Methods("POST")
}

// UpdateCardRequest represents a partial card update
type UpdateCardRequest struct {
	Description     *string    `json:"description,omitempty"`
	CardType        *string    `json:"card_type,omitempty"`
	Priority        *string    `json:"priority,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Assignee        *string    `json:"assignee,omitempty"`
	EnvelopeID      *uuid.UUID `json:"envelope_id,omitempty"`
	ContextKeywords []string   `json:"context_keywords,omitempty"`
}

// ListCards lists cards, optionally filtered by status, type, assignee,
// date range, and envelope. unassigned=true selects cards without an
// envelope and overrides envelope_id.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	filter, ok := cardFilterFromQuery(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.List(r.Context(), filter)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve cards")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"total": len(cards),
	})
}

func cardFilterFromQuery(w http.ResponseWriter, r *http.Request) (database.CardFilter, bool) {
	var filter database.CardFilter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		if err := validation.ValidateCardStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return filter, false
		}
		status := models.CardStatus(s)
		filter.Status = &status
	}
	if t := q.Get("type"); t != "" {
		if err := validation.ValidateCardType(t); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return filter, false
		}
		cardType := models.CardType(t)
		filter.CardType = &cardType
	}
	if a := q.Get("assignee"); a != "" {
		filter.Assignee = &a
	}
	if df := q.Get("date_from"); df != "" {
		parsed, err := time.Parse(time.RFC3339, df)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "date_from must be RFC 3339")
			return filter, false
		}
		filter.DateFrom = &parsed
	}
	if dt := q.Get("date_to"); dt != "" {
		parsed, err := time.Parse(time.RFC3339, dt)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "date_to must be RFC 3339")
			return filter, false
		}
		filter.DateTo = &parsed
	}
	if e := q.Get("envelope_id"); e != "" {
		id, err := uuid.Parse(e)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "envelope_id must be a UUID")
			return filter, false
		}
		filter.EnvelopeID = &id
	}
	if q.Get("unassigned") == "true" {
		filter.Unassigned = true
	}

	return filter, true
}

// SearchCards finds cards whose description or raw input matches the query
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "q is required")
		return
	}

	cards, err := h.cards.Search(r.Context(), query)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"total": len(cards),
	})
}

// GetCard retrieves one card
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	respondJSON(w, http.StatusOK, card)
}

// UpdateCard applies a partial update to a card
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	if req.Description != nil {
		desc := validation.SanitizeText(*req.Description)
		if desc == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "description must not be empty")
			return
		}
		card.Description = desc
	}
	if req.CardType != nil {
		if err := validation.ValidateCardType(*req.CardType); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		card.CardType = models.CardType(*req.CardType)
	}
	if req.Priority != nil {
		if err := validation.ValidatePriority(*req.Priority); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		card.Priority = models.Priority(*req.Priority)
	}
	if req.Status != nil {
		if err := validation.ValidateCardStatus(*req.Status); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		card.Status = models.CardStatus(*req.Status)
	}
	if req.Date != nil {
		card.Date = req.Date
	}
	if req.Assignee != nil {
		card.Assignee = validation.SanitizeText(*req.Assignee)
	}
	if req.EnvelopeID != nil {
		if *req.EnvelopeID == uuid.Nil {
			card.EnvelopeID = nil
		} else {
			card.EnvelopeID = req.EnvelopeID
		}
	}
	if req.ContextKeywords != nil {
		card.ContextKeywords = req.ContextKeywords
	}

	if err := h.cards.Update(r.Context(), card); err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	respondJSON(w, http.StatusOK, card)
}

// DeleteCard removes a card
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// CompleteCard marks a card completed
func (h *CardHandler) CompleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := h.cards.MarkCompleted(r.Context(), id); err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Card not found")
		return
	}

	respondJSON(w, http.StatusOK, card)
}
