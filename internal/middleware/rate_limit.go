package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/logingate/pkg/http"
	"github.com/go-chi/httprate"
)

// FloodGuardConfig holds configuration for the coarse per-IP request guard
type FloodGuardConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// DefaultFloodGuard returns a guard sized far above any login policy (120 requests per minute)
func DefaultFloodGuard() FloodGuardConfig {
	return FloodGuardConfig{
		RequestsPerMinute: 120,
	}
}

// FloodGuard limits raw request volume per client IP before admission runs.
// It keys on the same trusted-proxy-aware address as the admission check.
func FloodGuard(config FloodGuardConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests")
		}),
	)
}
