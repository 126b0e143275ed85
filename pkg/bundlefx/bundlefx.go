// bundlefx/bundlefx.go
package bundlefx

import (
	"go.uber.org/fx"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
	"github.com/lumenlearn/authcore/pkg/middleware/guard"
	"github.com/lumenlearn/authcore/pkg/middleware/logger"
	"github.com/lumenlearn/authcore/pkg/middleware/metrics"
	"github.com/lumenlearn/authcore/pkg/middleware/ratelimit"
	"github.com/lumenlearn/authcore/pkg/store"
)

// Module provided to fx
var Module = fx.Options(
	logger.Module,
	audit.Module,
	store.Module,
	auth.Module,
	guard.Module,
	ratelimit.Module,
	metrics.Module,
)
