package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_Hello(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	New().Hello(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["service"] != "installstats" || response["version"] != Version {
		t.Errorf("unexpected response: %v", response)
	}
}

func TestHandler_Errors(t *testing.T) {
	t.Parallel()

	h := New()
	tests := []struct {
		name     string
		serve    http.HandlerFunc
		method   string
		wantCode int
		wantBody ErrorResponse
	}{
		{"not found", h.NotFound, http.MethodGet, http.StatusNotFound, ErrorResponse{Error: "resource not found", Code: "NOT_FOUND"}},
		{"method not allowed", h.MethodNotAllowed, http.MethodPost, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.serve(rec, httptest.NewRequest(tt.method, "/api/crate", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}

			var got ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got != tt.wantBody {
				t.Errorf("body = %+v, want %+v", got, tt.wantBody)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeText(rec, http.StatusForbidden, "nope")

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if rec.Body.String() != "nope" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
