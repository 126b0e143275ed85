package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }
func ProvideLogger() *zap.Logger           { return NewLog("system.log") }
func ProvideAuditLogger() *zap.Logger      { return NewLog("security-audit.log") }

var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
	fx.Provide(fx.Annotate(ProvideAuditLogger, fx.ResultTags(`name:"audit"`))),
)
