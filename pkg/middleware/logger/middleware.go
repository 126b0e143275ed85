package logger

import (
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

type Middleware struct{}

// package-level singleton for access logs
var httpAccessLogger = NewLog("http-access.log")

// Middleware emits one access-log line per request with the identity the
// authenticator attached, if any. Request bodies are never logged here:
// dependent traffic routinely carries a minor's data and the security
// audit trail captures decisions separately.
func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := httpAccessLogger

			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(auth.WithIdentitySlot(r.Context()))

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				lat := time.Since(start)

				subject := ""
				role := ""
				if id, ok := auth.IdentityFromSlot(r.Context()); ok {
					subject = id.SubjectID
					role = string(id.Role)
				}

				l.Info("",
					zap.String("dateTime", start.UTC().Format(time.RFC1123)),
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.Bool("isAuthenticated", subject != ""),
					zap.String("subjectId", subject),
					zap.String("role", role),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", lat),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
