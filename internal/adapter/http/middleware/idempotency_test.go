package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memoryReplayStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryReplayStore() *memoryReplayStore {
	return &memoryReplayStore{data: make(map[string][]byte)}
}

func (s *memoryReplayStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memoryReplayStore) Set(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	store := newMemoryReplayStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transfers", nil)
		req.Header.Set(IdempotencyKeyHeader, "req-1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected status 201, got %d", i, rec.Code)
		}
		if rec.Body.String() != `{"success":true}` {
			t.Fatalf("attempt %d: unexpected body %q", i, rec.Body.String())
		}
		if i == 1 && rec.Header().Get("X-Idempotency-Replay") != "true" {
			t.Error("expected replay header on second attempt")
		}
	}

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_ReplaysNoContentStatus(t *testing.T) {
	store := newMemoryReplayStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/movements", nil)
		req.Header.Set(IdempotencyKeyHeader, "req-204")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d: expected status 204, got %d", i, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("attempt %d: expected empty body, got %q", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_SkipsFailures(t *testing.T) {
	store := newMemoryReplayStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transfers", nil)
		req.Header.Set(IdempotencyKeyHeader, "req-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Fatalf("failed responses must not be cached, handler ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_IgnoresGetsAndMissingKeys(t *testing.T) {
	store := newMemoryReplayStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	get := httptest.NewRequest(http.MethodGet, "/balance", nil)
	get.Header.Set(IdempotencyKeyHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), get)
	handler.ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/transfers", nil)
	handler.ServeHTTP(httptest.NewRecorder(), post)
	handler.ServeHTTP(httptest.NewRecorder(), post)

	if calls != 4 {
		t.Fatalf("expected no caching without key or for GET, handler ran %d times", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(store.data))
	}
}
