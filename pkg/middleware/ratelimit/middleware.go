// Package ratelimit throttles repeated attempts at credential-adjacent
// endpoints. It is defense in depth, not a hard dependency: a broken
// counter store lets requests through.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
	"github.com/lumenlearn/authcore/pkg/store"
)

type Middleware struct {
	counters store.RateLimitStore
	sink     audit.Sink
	log      *zap.Logger
}

func New(counters store.RateLimitStore, sink audit.Sink, log *zap.Logger) *Middleware {
	return &Middleware{counters: counters, sink: sink, log: log}
}

// Limit wraps an endpoint with a (origin, path)-keyed counter. The store
// serializes increments for a key; two concurrent callers only couple
// through that counter.
func (m *Middleware) Limit(maxAttempts int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := origin(r) + ":" + r.URL.Path
			n, err := m.counters.Increment(r.Context(), key, window)
			if err != nil {
				m.sink.Record(audit.Event{
					Type:      audit.TypeStoreError,
					Endpoint:  r.URL.Path,
					Outcome:   audit.OutcomeAllow,
					Reason:    "rate_limit_store_unavailable",
					RequestID: chimd.GetReqID(r.Context()),
				})
				m.log.Warn("rate limit store unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if n > int64(maxAttempts) {
				e := audit.Event{
					Type:      audit.TypeRateLimitExceeded,
					Endpoint:  r.URL.Path,
					Outcome:   audit.OutcomeDeny,
					Reason:    "too_many_attempts",
					RequestID: chimd.GetReqID(r.Context()),
				}
				if id, ok := auth.GetIdentity(r.Context()); ok {
					e.SubjectID = id.SubjectID
					e.Role = string(id.Role)
				}
				m.sink.Record(e)
				httpx.WriteError(w, r, http.StatusTooManyRequests, httpx.CodeRateLimitExceeded, "too many attempts, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// origin identifies the caller: the first X-Forwarded-For hop when the
// gateway sits behind a proxy, otherwise the remote host.
func origin(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ProvideRateLimiter(counters store.RateLimitStore, sink audit.Sink, log *zap.Logger) *Middleware {
	return New(counters, sink, log)
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimiter),
)
