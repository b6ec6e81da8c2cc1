package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckBasic(t *testing.T) {
	t.Parallel()

	checker := NewHealthChecker(nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	checker.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("expected healthy, got %q", response.Status)
	}
	if response.Checks != nil {
		t.Errorf("basic mode should not run checks, got %v", response.Checks)
	}
}
