package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

// Collect produces the HTTP middleware that records the counters/histogram.
func Collect() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(auth.WithIdentitySlot(r.Context()))
			startTime := time.Now()

			defer func() {
				// skip self-scrape
				if r.URL.Path == "/metrics" {
					return
				}

				endTime := time.Since(startTime)

				role := ""
				if id, ok := auth.IdentityFromSlot(r.Context()); ok {
					role = string(id.Role)
				}

				code := strconv.Itoa(ww.Status())
				uri := r.URL.Path // path only; avoid cardinality explosion
				method := r.Method

				totalHttpRequestsFromRole.WithLabelValues(role).Inc()
				totalHttpRequestsToUri.WithLabelValues(code, uri, method).Inc()
				totalHttpRequests.WithLabelValues(code, method).Inc()
				responseTime.Observe(endTime.Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
