package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cardfile/cardfile/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func newTestCardRouter(cards *mockCardRepo) *mux.Router {
	r := mux.NewRouter()
	NewCardHandler(cards).RegisterRoutes(r.PathPrefix("/api/v1/cards").Subrouter())
	return r
}

func getRequest(router *mux.Router, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func seedCard(repo *mockCardRepo, card *models.Card) *models.Card {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.Status == "" {
		card.Status = models.CardStatusActive
	}
	if card.CardType == "" {
		card.CardType = models.CardTypeTask
	}
	if card.Priority == "" {
		card.Priority = models.PriorityMedium
	}
	repo.cards = append(repo.cards, card)
	return card
}

func TestListCardsFilters(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	envelopeID := uuid.New()
	seedCard(repo, &models.Card{Description: "ship the release", EnvelopeID: &envelopeID})
	seedCard(repo, &models.Card{Description: "old chore", Status: models.CardStatusCompleted})
	seedCard(repo, &models.Card{Description: "loose thought", CardType: models.CardTypeNote})
	router := newTestCardRouter(repo)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filter", "", 3},
		{"active only", "?status=active", 2},
		{"completed only", "?status=completed", 1},
		{"notes only", "?type=note", 1},
		{"by envelope", "?envelope_id=" + envelopeID.String(), 1},
		{"unassigned", "?unassigned=true", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := getRequest(router, "/api/v1/cards"+tt.query)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			data := decodeData(t, rr)
			if total := int(data["total"].(float64)); total != tt.want {
				t.Errorf("expected %d cards, got %d", tt.want, total)
			}
		})
	}
}

func TestListCardsRejectsBadFilters(t *testing.T) {
	t.Parallel()

	router := newTestCardRouter(&mockCardRepo{})

	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "?status=done"},
		{"unknown type", "?type=memo"},
		{"bad date", "?date_from=yesterday"},
		{"bad envelope id", "?envelope_id=not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := getRequest(router, "/api/v1/cards"+tt.query)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestSearchCards(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	seedCard(repo, &models.Card{Description: "review the budget spreadsheet"})
	seedCard(repo, &models.Card{Description: "water the plants"})
	router := newTestCardRouter(repo)

	rr := getRequest(router, "/api/v1/cards/search?q=budget")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeData(t, rr)
	if total := int(data["total"].(float64)); total != 1 {
		t.Errorf("expected 1 match, got %d", total)
	}

	rr = getRequest(router, "/api/v1/cards/search")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", rr.Code)
	}
}

func TestGetCardNotFound(t *testing.T) {
	t.Parallel()

	router := newTestCardRouter(&mockCardRepo{})

	rr := getRequest(router, "/api/v1/cards/"+uuid.NewString())
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}

	rr = getRequest(router, "/api/v1/cards/not-a-uuid")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rr.Code)
	}
}

func patchJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("PATCH", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateCard(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	card := seedCard(repo, &models.Card{Description: "draft the proposal"})
	router := newTestCardRouter(repo)

	rr := patchJSON(t, router, "/api/v1/cards/"+card.ID.String(), map[string]any{
		"priority": "high",
		"assignee": "jordan",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if card.Priority != models.PriorityHigh {
		t.Errorf("expected priority high, got %s", card.Priority)
	}
	if card.Assignee != "jordan" {
		t.Errorf("expected assignee jordan, got %q", card.Assignee)
	}
	if card.Description != "draft the proposal" {
		t.Errorf("unrelated field changed: %q", card.Description)
	}
}

func TestUpdateCardValidation(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	card := seedCard(repo, &models.Card{Description: "draft the proposal"})
	router := newTestCardRouter(repo)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad priority", map[string]any{"priority": "critical"}},
		{"bad status", map[string]any{"status": "archived"}},
		{"bad type", map[string]any{"card_type": "memo"}},
		{"empty description", map[string]any{"description": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := patchJSON(t, router, "/api/v1/cards/"+card.ID.String(), tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestUpdateCardDetachesEnvelope(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	envelopeID := uuid.New()
	card := seedCard(repo, &models.Card{Description: "filed away", EnvelopeID: &envelopeID})
	router := newTestCardRouter(repo)

	rr := patchJSON(t, router, "/api/v1/cards/"+card.ID.String(), map[string]any{
		"envelope_id": uuid.Nil.String(),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if card.EnvelopeID != nil {
		t.Errorf("expected envelope detached, got %v", card.EnvelopeID)
	}
}

func TestCompleteCard(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	card := seedCard(repo, &models.Card{Description: "file the report"})
	router := newTestCardRouter(repo)

	req := httptest.NewRequest("POST", "/api/v1/cards/"+card.ID.String()+"/complete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if card.Status != models.CardStatusCompleted {
		t.Errorf("expected completed, got %s", card.Status)
	}
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()

	repo := &mockCardRepo{}
	card := seedCard(repo, &models.Card{Description: "obsolete"})
	router := newTestCardRouter(repo)

	req := httptest.NewRequest("DELETE", "/api/v1/cards/"+card.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(repo.cards) != 0 {
		t.Errorf("expected card removed, %d remain", len(repo.cards))
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cards/"+card.ID.String(), nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestListCardsDateRangePassthrough(t *testing.T) {
	t.Parallel()

	router := newTestCardRouter(&mockCardRepo{})

	from := time.Now().UTC().Format(time.RFC3339)
	rr := getRequest(router, "/api/v1/cards?date_from="+from)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for RFC 3339 date, got %d", rr.Code)
	}
}
