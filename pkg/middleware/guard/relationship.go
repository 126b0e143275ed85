package guard

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

// RequireGuardianOf gates guardian-scoped endpoints that target a
// specific dependent. The role is re-checked here even though the role
// gate normally runs first; the ownership decision must not depend on
// middleware ordering elsewhere.
//
// This is the one gate that fails closed: without a definitive answer
// from the relationship lookup, ownership cannot be assumed.
func (g *Middleware) RequireGuardianOf(param string) func(http.Handler) http.Handler {
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
			if id.Role != auth.RoleGuardian {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "guardian_role_required",
				})
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeInsufficientPermissions, "insufficient permissions for this resource")
				return
			}

			cid := childID(r, param)
			if cid == "" {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "missing_child_id",
				})
				httpx.WriteError(w, r, http.StatusBadRequest, httpx.CodeMissingChildID, "child identifier is required")
				return
			}

			owns, err := g.relationships.VerifyGuardianOfDependent(r.Context(), id.SubjectID, cid)
			if err != nil {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "ownership_lookup_failed",
				})
				g.log.Error("ownership lookup failed",
					zap.String("guardianId", id.SubjectID),
					zap.String("childId", cid),
					zap.Error(err),
				)
				httpx.WriteError(w, r, http.StatusInternalServerError, httpx.CodeAuthorizationError, "authorization could not be completed")
				return
			}
			if !owns {
				g.record(r, audit.Event{
					Type:      audit.TypeAuthorizationFailure,
					SubjectID: id.SubjectID,
					Role:      string(id.Role),
					Outcome:   audit.OutcomeDeny,
					Reason:    "parent_child_mismatch child=" + cid,
				})
				httpx.WriteError(w, r, http.StatusForbidden, httpx.CodeParentChildMismatch, "child does not belong to this guardian")
				return
			}

			g.record(r, audit.Event{
				Type:      audit.TypeAuthorizationSuccess,
				SubjectID: id.SubjectID,
				Role:      string(id.Role),
				Outcome:   audit.OutcomeAllow,
			})
			ctx := context.WithValue(r.Context(), verifiedChildCtxKey, cid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
