package audit

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideRecorder wants the dedicated audit logger, not the system one,
// so security events land in their own rotated file.
func ProvideRecorder(log *zap.Logger) *Recorder {
	return NewRecorder(log)
}

var Module = fx.Options(
	fx.Provide(fx.Annotate(ProvideRecorder, fx.ParamTags(`name:"audit"`))),
)
