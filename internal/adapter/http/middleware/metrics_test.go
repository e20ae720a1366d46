package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/health", "/health"},
		{"/api/v1/accounts", "/api/v1/accounts"},
		{"/api/v1/accounts/balance", "/api/v1/accounts/balance"},
		{"/api/v1/transfers/01HZXK3V5T", "/api/v1/transfers/:id"},
		{"/api/v1/transfers/01HZXK3V5T/entries", "/api/v1/transfers/:id/entries"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetricsMiddleware_PropagatesStatus(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected middleware to pass status through, got %d", rec.Code)
	}
}
