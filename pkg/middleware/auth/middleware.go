package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/store"
)

// Middleware is the authenticator: it turns a bearer token into an
// Identity on the request context, or terminates the request. The
// revocation lookup is its only suspension point; nothing runs downstream
// until that lookup resolves or fails open.
type Middleware struct {
	verifier    *Verifier
	revocations store.RevocationStore
	sink        audit.Sink
	log         *zap.Logger
}

func New(verifier *Verifier, revocations store.RevocationStore, sink audit.Sink, log *zap.Logger) *Middleware {
	return &Middleware{
		verifier:    verifier,
		revocations: revocations,
		sink:        sink,
		log:         log,
	}
}

func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := m.verifier.Verify(bearerToken(r))
			if err != nil {
				switch {
				case errors.Is(err, ErrNoToken):
					// no revocation lookup happens on this path
					m.deny(r, audit.Event{
						Type:    audit.TypeAuthenticationFailure,
						Reason:  "no_token",
						Outcome: audit.OutcomeDeny,
					})
					httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeNoToken, "authentication token required")
				default:
					m.deny(r, audit.Event{
						Type:    audit.TypeAuthenticationFailure,
						Reason:  "invalid_token",
						Outcome: audit.OutcomeDeny,
					})
					httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeInvalidToken, "authentication token is invalid or expired")
				}
				return
			}

			if id.TokenID != "" {
				revoked, err := m.revocations.IsRevoked(r.Context(), id.TokenID)
				if err != nil {
					// Fail open: content availability wins over
					// instantaneous revocation. The distinct event type
					// keeps degraded infrastructure visible.
					m.sink.Record(audit.Event{
						Type:      audit.TypeStoreError,
						SubjectID: id.SubjectID,
						Role:      string(id.Role),
						Endpoint:  r.URL.Path,
						Outcome:   audit.OutcomeAllow,
						Reason:    "revocation_store_unavailable",
						RequestID: chimd.GetReqID(r.Context()),
					})
					m.log.Warn("revocation store unavailable, proceeding unrevoked", zap.Error(err))
				} else if revoked {
					m.deny(r, audit.Event{
						Type:      audit.TypeAuthenticationFailure,
						SubjectID: id.SubjectID,
						Role:      string(id.Role),
						Reason:    "revoked_token",
						Outcome:   audit.OutcomeDeny,
					})
					httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeRevokedToken, "authentication token has been revoked")
					return
				}
			}

			m.sink.Record(audit.Event{
				Type:      audit.TypeAuthentication,
				SubjectID: id.SubjectID,
				Role:      string(id.Role),
				Endpoint:  r.URL.Path,
				Outcome:   audit.OutcomeAllow,
				RequestID: chimd.GetReqID(r.Context()),
			})

			fillIdentitySlot(r.Context(), id)
			ctx := context.WithValue(r.Context(), identityCtxKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) deny(r *http.Request, e audit.Event) {
	e.Endpoint = r.URL.Path
	e.RequestID = chimd.GetReqID(r.Context())
	m.sink.Record(e)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
