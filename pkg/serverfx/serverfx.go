package serverfx

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/bundlefx"
	"github.com/lumenlearn/authcore/pkg/core"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
	"github.com/lumenlearn/authcore/pkg/middleware/guard"
	"github.com/lumenlearn/authcore/pkg/middleware/logger"
	"github.com/lumenlearn/authcore/pkg/middleware/metrics"
	"github.com/lumenlearn/authcore/pkg/middleware/ratelimit"
)

// Options allow per-service env keys/defaults without code duplication.
type Options struct {
	Service         string // "learning-api", "profile-api", etc.
	ManifestEnv     string // e.g. "LEARNING_API_MANIFEST"
	DefaultManifest string // e.g. "manifest.toml"
	ListenAddrEnv   string // e.g. "SERVER_LISTEN_ADDRESS"
	DefaultListen   string // e.g. ":4000"
	TLSCertEnv      string // e.g. "SSL_SERVER_CERTIFICATE"
	TLSKeyEnv       string // e.g. "SSL_SERVER_KEY"
}

// ---- Audit sink ----

// provideSink wraps the recorder with the decision counters and flushes
// it on shutdown so buffered events reach the log file.
func provideSink(lc fx.Lifecycle, rec *audit.Recorder) audit.Sink {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			rec.Close()
			return nil
		},
	})
	return metrics.WrapSink(rec)
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Opts Options

	AuthMW  *auth.Middleware
	Guards  *guard.Middleware
	Limiter *ratelimit.Middleware
	LogMW   *logger.Middleware

	Metrics http.Handler `name:"metrics"`

	R   httpx.Router
	Log *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	cfgPath := envOr(d.Opts.ManifestEnv, d.Opts.DefaultManifest)
	cfg, err := core.LoadConfig(cfgPath)
	if err != nil {
		d.Log.Fatal("manifest load failed", zap.Error(err), zap.String("path", cfgPath))
	}

	return core.BuildRouter(cfg, core.BuildDeps{
		Auth:    d.AuthMW,
		Guards:  d.Guards,
		Limiter: d.Limiter,
		LogMW:   d.LogMW,
		Metrics: d.Metrics,
		Router:  d.R,
	})
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	addr := envOr(d.Opts.ListenAddrEnv, d.Opts.DefaultListen)
	cert := os.Getenv(d.Opts.TLSCertEnv)
	key := os.Getenv(d.Opts.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && err != http.ErrServerClosed {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---- Public Fx module ----

func Module(opts Options) fx.Option {
	return fx.Options(
		// Supply options to DI.
		fx.Supply(opts),

		// Stores, middleware, audit pipeline.
		bundlefx.Module,

		// Audit sink (recorder + decision counters)
		fx.Provide(provideSink),

		// Router implementation
		fx.Provide(httpx.NewChi),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		// App lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---- helpers ----

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
