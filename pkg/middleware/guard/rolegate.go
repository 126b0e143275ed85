package guard

import (
	"net/http"
	"strings"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

// RequireRole passes requests whose identity holds one of the listed
// roles. Pure predicate, no IO.
func (g *Middleware) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	required := strings.Join(names, ",")

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

			if _, ok := allowed[id.Role]; !ok {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "role_not_allowed required=" + required,
				})
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeInsufficientPermissions, "insufficient permissions for this resource")
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
