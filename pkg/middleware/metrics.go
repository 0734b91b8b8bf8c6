package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"adhub/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

// HTTPMetrics records request counts and latency labelled by route pattern, so
// ids in the path do not explode label cardinality.
func HTTPMetrics(m *metrics.Metrics, router *httprouter.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := routeLabel(router, r)
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeLabel(router *httprouter.Router, r *http.Request) string {
	if router == nil {
		return r.URL.Path
	}
	handle, params, _ := router.Lookup(r.Method, r.URL.Path)
	if handle == nil {
		return "unmatched"
	}
	segments := strings.Split(r.URL.Path, "/")
	for _, p := range params {
		for i, seg := range segments {
			if seg == p.Value {
				segments[i] = ":" + p.Key
				break
			}
		}
	}
	return strings.Join(segments, "/")
}
