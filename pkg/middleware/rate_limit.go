package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "adhub/pkg/errors"
	httputil "adhub/pkg/http"
	"adhub/pkg/logger"
	"adhub/pkg/metrics"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client address.
type ClientRateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClientRateLimiter(rps float64, burst int, log *logger.Logger, m *metrics.Metrics) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		log:     log,
		metrics: m,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for client, cl := range rl.clients {
				if time.Since(cl.lastSeen) > rl.idleTTL {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddress(r)
			if limiter.Allow(client) {
				next.ServeHTTP(w, r)
				return
			}

			limiter.log.Warn("Rate limit exceeded",
				"request_id", GetRequestID(r.Context()),
				"client", client,
				"path", r.URL.Path,
			)
			if limiter.metrics != nil {
				limiter.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "1")
			if err := httputil.WriteError(w, apperrors.TooManyRequests("Rate limit exceeded")); err != nil {
				limiter.log.Error("failed to write error response", "handler", "RateLimit", "operation", "WriteError", "error", err)
			}
		})
	}
}

// clientAddress prefers the first X-Forwarded-For hop, set by the ingress.
func clientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
