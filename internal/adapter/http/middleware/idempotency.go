package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
)

// ReplayStore caches successful responses keyed by idempotency key.
type ReplayStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// IdempotencyMiddleware replays cached responses for repeated requests. It is
// an edge shortcut only: the ledger transaction holds the authoritative
// idempotency guard, so a cache miss on a replayed key is still safe.
type IdempotencyMiddleware struct {
	store ReplayStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store ReplayStore, ttl time.Duration) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with response replay.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		cached, err := m.store.Get(r.Context(), key)
		if err == nil && cached != nil {
			var entry cachedResponse
			if json.Unmarshal(cached, &entry) == nil {
				if len(entry.Body) > 0 {
					w.Header().Set("Content-Type", "application/json")
				}
				w.Header().Set("X-Idempotency-Replay", "true")
				w.WriteHeader(entry.Status)
				w.Write(entry.Body)

				return
			}
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Cache failures are ignored; the database guard still holds.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			entry, err := json.Marshal(cachedResponse{
				Status: recorder.statusCode,
				Body:   recorder.body.Bytes(),
			})
			if err == nil {
				m.store.Set(r.Context(), key, entry, m.ttl)
			}
		}
	})
}

// cachedResponse is the stored form of a replayable response.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body,omitempty"`
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
