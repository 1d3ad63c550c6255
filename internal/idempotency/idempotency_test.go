package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilguunt/moneyapp/pkg/auth"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, time.Hour), mr
}

func TestCache(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	val, err := cache.Get(ctx, "unknown")
	assert.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, cache.Set(ctx, "key-1", []byte(`{"status":200}`)))
	val, err = cache.Get(ctx, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"status":200}`), val)

	// Entries expire with the configured TTL.
	mr.FastForward(2 * time.Hour)
	val, err = cache.Get(ctx, "key-1")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestMiddlewareReplaysSuccess(t *testing.T) {
	cache, _ := newTestCache(t)

	var calls int32
	handler := Middleware(cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"call":%d}`, n)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", nil)
		r.Header.Set(HeaderKey, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `{"call":1}`, first.Body.String())

	// The retry gets the stored response, the handler is not called again.
	second := do()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, `{"call":1}`, second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMiddlewareDoesNotCacheErrors(t *testing.T) {
	cache, _ := newTestCache(t)

	var calls int32
	handler := Middleware(cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/loans/4/repay", nil)
		r.Header.Set(HeaderKey, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusPaymentRequired, do().Code)
	// A failed attempt may be retried for real.
	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMiddlewareWithoutKey(t *testing.T) {
	cache, _ := newTestCache(t)

	var calls int32
	handler := Middleware(cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMiddlewareScopesKeyByUser(t *testing.T) {
	cache, _ := newTestCache(t)

	var calls int32
	handler := Middleware(cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(auth.UserIDKey).(int)
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"user":%d}`, userID)
	}))

	do := func(userID int) *httptest.ResponseRecorder {
		ctx := context.WithValue(context.Background(), auth.UserIDKey, userID)
		r := httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", nil).WithContext(ctx)
		r.Header.Set(HeaderKey, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	// Two users sharing a key value must never see each other's response.
	first := do(1)
	assert.Equal(t, `{"user":1}`, first.Body.String())

	second := do(2)
	assert.Equal(t, `{"user":2}`, second.Body.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// Each user still gets their own replay.
	replay := do(1)
	assert.Equal(t, `{"user":1}`, replay.Body.String())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMiddlewareScopesKeyByRoute(t *testing.T) {
	cache, _ := newTestCache(t)

	var calls int32
	handler := Middleware(cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/api/wallet/deposit", "/api/wallet/withdraw"} {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.Header.Set(HeaderKey, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
