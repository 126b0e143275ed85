package guard

import (
	"net/http"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

// RequireSelf gates dependent-scoped endpoints: a dependent may only act
// on its own resource. A request that names no target is acting on
// itself. Pure comparison, no IO.
func (g *Middleware) RequireSelf(param string) func(http.Handler) http.Handler {
	if param == "" {
		param = DefaultChildParam
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.GetIdentity(r.Context())
			if !ok {
				g.record(r, audit.Event{
					Type:    audit.TypeAuthorizationFailure,
					Outcome: audit.OutcomeDeny,
					Reason:  "authentication_required",
				})
				httpx.WriteError(w, r, http.StatusUnauthorized, httpx.CodeAuthenticationRequired, "authentication required")
				return
			}
			if id.Role != auth.RoleDependent {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "dependent_role_required",
				})
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeInsufficientPermissions, "insufficient permissions for this resource")
				return
			}

			if target := selfTargetID(r, param); target != "" && target != id.SubjectID {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "cross_account_access target=" + target,
				})
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeUnauthorizedAccess, "cannot access another account's resources")
				return
			}

			g.record(r, audit.Event{
				Type:      audit.TypeAuthorizationSuccess,
				SubjectID: id.SubjectID,
				Role:      string(id.Role),
				Outcome:   audit.OutcomeAllow,
			})
			next.ServeHTTP(w, r)
		})
	}
}
