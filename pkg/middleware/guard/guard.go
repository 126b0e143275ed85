// Package guard holds the authorization gates that run after the
// authenticator: the role gate, the guardian/child relationship verifier
// and the dependent self-access guard. All three record one audit event
// per decision.
package guard

import (
	"context"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
)

// DefaultChildParam is the route parameter naming the targeted dependent
// when the manifest does not override it.
const DefaultChildParam = "childId"

// RelationshipChecker confirms a guardian legitimately owns a dependent
// profile. The lookup lives outside this subsystem (profile service /
// user records); only its answer matters here.
type RelationshipChecker interface {
	VerifyGuardianOfDependent(ctx context.Context, guardianID, dependentID string) (bool, error)
}

type Middleware struct {
	relationships RelationshipChecker
	sink          audit.Sink
	log           *zap.Logger
}

func New(relationships RelationshipChecker, sink audit.Sink, log *zap.Logger) *Middleware {
	return &Middleware{
		relationships: relationships,
		sink:          sink,
		log:           log,
	}
}

type contextKey struct{ name string }

var verifiedChildCtxKey = &contextKey{"verifiedChild"}

// VerifiedChildID returns the dependent id the relationship verifier
// confirmed for this request. The confirmation is request-scoped; it is
// never cached across requests.
func VerifiedChildID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(verifiedChildCtxKey).(string)
	return id, ok
}

func (g *Middleware) record(r *http.Request, e audit.Event) {
	e.Endpoint = r.URL.Path
	e.RequestID = chimd.GetReqID(r.Context())
	g.sink.Record(e)
}
