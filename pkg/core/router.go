// core/router.go
package core

import (
	"context"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"

	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/manifest"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
	"github.com/lumenlearn/authcore/pkg/middleware/guard"
	"github.com/lumenlearn/authcore/pkg/middleware/logger"
	hmetrics "github.com/lumenlearn/authcore/pkg/middleware/metrics"
	"github.com/lumenlearn/authcore/pkg/middleware/ratelimit"
)

type BuildDeps struct {
	Auth    *auth.Middleware
	Guards  *guard.Middleware
	Limiter *ratelimit.Middleware
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
}

// BuildRouter assembles the gateway from the manifest. Per route the
// pipeline is authenticator, role gate, scope guard, rate limiter,
// handler; a denial short-circuits and every decision is audited by the
// gate that made it.
func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	for _, rt := range cfg.Routes {
		h := wrapRoute(rt)
		if rt.Policy.TimeoutMS > 0 {
			t := time.Duration(rt.Policy.TimeoutMS) * time.Millisecond
			h = withTimeout(h, t)
		}
		if rl := rt.Policy.RateLimit; rl != nil {
			h = d.Limiter.Limit(rl.MaxAttempts, time.Duration(rl.WindowSeconds)*time.Second)(h)
		}

		switch rt.Guard.Scope {
		case manifest.ScopeGuardian:
			h = d.Guards.RequireGuardianOf(rt.Guard.ChildParam)(h)
		case manifest.ScopeSelf:
			h = d.Guards.RequireSelf(rt.Guard.ChildParam)(h)
		}

		if len(rt.Guard.Roles) > 0 {
			h = d.Guards.RequireRole(toRoles(rt.Guard.Roles)...)(h)
		}

		// every manifest route is authenticated unless declared public
		if !rt.Guard.Public {
			h = d.Auth.Middleware()(h)
		}

		r.Handle(rt.Method, rt.Path, h)
	}
	return r.Mux()
}

func toRoles(names []string) []auth.Role {
	out := make([]auth.Role, 0, len(names))
	for _, n := range names {
		out = append(out, auth.Role(n))
	}
	return out
}

func wrapRoute(rt manifest.Route) http.Handler {
	h, ok := Lookup(rt.Handler.Name)
	if !ok {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "handler not found", http.StatusInternalServerError)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		out, status, err := h(r.Context(), body)
		if err != nil {
			http.Error(w, err.Error(), statusIf(status, http.StatusInternalServerError))
			return
		}
		writeJSON(w, out, statusIf(status, http.StatusOK))
	})
}

func withTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func statusIf(s, def int) int {
	if s > 0 {
		return s
	}
	return def
}
