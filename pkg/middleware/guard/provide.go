package guard

import (
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
)

// ProvideRelationshipChecker points at the profile service named by
// PROFILE_API_URL. Left unset, every ownership lookup errors and the
// relationship gate fails closed.
func ProvideRelationshipChecker() RelationshipChecker {
	return NewHTTPRelationshipChecker(nil, strings.TrimSpace(os.Getenv("PROFILE_API_URL")))
}

func ProvideGuards(rc RelationshipChecker, sink audit.Sink, log *zap.Logger) *Middleware {
	return New(rc, sink, log)
}

var Module = fx.Options(
	fx.Provide(ProvideRelationshipChecker),
	fx.Provide(ProvideGuards),
)
