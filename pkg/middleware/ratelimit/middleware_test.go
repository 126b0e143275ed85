package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/store"
)

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureSink) Record(e audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureSink) ofType(typ string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type erroringCounters struct{}

func (erroringCounters) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("counter store down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	sink := &captureSink{}
	m := New(store.NewMemoryRateLimitStore(), sink, zap.NewNop())
	h := m.Limit(5, 15*time.Minute)(okHandler())

	for i := 1; i <= 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/child-login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i)
	}

	// the 6th attempt in the window
	req := httptest.NewRequest(http.MethodPost, "/api/auth/child-login", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpx.CodeRateLimitExceeded, body.Code)
	assert.Equal(t, 1, sink.ofType(audit.TypeRateLimitExceeded))
}

func TestLimiterKeysByOrigin(t *testing.T) {
	m := New(store.NewMemoryRateLimitStore(), &captureSink{}, zap.NewNop())
	h := m.Limit(1, time.Minute)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// a different caller is not affected by the first caller's attempts
	other := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimiterHonorsForwardedFor(t *testing.T) {
	m := New(store.NewMemoryRateLimitStore(), &captureSink{}, zap.NewNop())
	h := m.Limit(1, time.Minute)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.9:5000" // proxy addr varies, client does not
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.9")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i+1)
	}
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	sink := &captureSink{}
	m := New(erroringCounters{}, sink, zap.NewNop())
	h := m.Limit(1, time.Minute)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "rate limiting is not a hard dependency")
	}
	assert.Equal(t, 3, sink.ofType(audit.TypeStoreError))
}
