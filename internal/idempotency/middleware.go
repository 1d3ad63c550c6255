package idempotency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bilguunt/moneyapp/pkg/auth"
	"go.uber.org/zap"
)

// HeaderKey is the request header carrying the client's idempotency key.
const HeaderKey = "Idempotency-Key"

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// cacheKey scopes the client's key to the authenticated user and the route,
// so the same header value from two users or two endpoints never collides.
func cacheKey(r *http.Request, key string) string {
	userID, _ := r.Context().Value(auth.UserIDKey).(int)
	return fmt.Sprintf("%d:%s:%s", userID, r.URL.Path, key)
}

// Middleware replays the cached response for requests carrying an
// Idempotency-Key that was already served, so mobile clients can retry
// money-moving calls after a dropped connection without double effect.
// Requests without the header pass through untouched.
func Middleware(cache *Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = cacheKey(r, key)

			if raw, err := cache.Get(r.Context(), key); err != nil {
				zap.L().Error("idempotency cache lookup failed", zap.Error(err))
			} else if raw != nil {
				var stored storedResponse
				if err := json.Unmarshal(raw, &stored); err == nil {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(stored.Status)
					_, _ = w.Write(stored.Body)
					return
				}
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Only successful outcomes are replayable; a failed attempt may
			// be retried for real.
			if rec.status >= http.StatusOK && rec.status < http.StatusMultipleChoices {
				raw, err := json.Marshal(storedResponse{Status: rec.status, Body: rec.body.Bytes()})
				if err == nil {
					err = cache.Set(r.Context(), key, raw)
				}
				if err != nil {
					zap.L().Error("idempotency cache store failed", zap.Error(err))
				}
			}
		})
	}
}
