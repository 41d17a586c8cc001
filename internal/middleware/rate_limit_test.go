package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/logingate/pkg/http"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestFloodGuard_EnforcesLimit verifies requests beyond the per-minute budget get 429
func TestFloodGuard_EnforcesLimit(t *testing.T) {
	handler := FloodGuard(FloodGuardConfig{RequestsPerMinute: 3})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/auth/login/admission", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, recorder.Code)
		}
	}

	req := httptest.NewRequest("POST", "/auth/login/admission", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got content type %q", ct)
	}
}

// TestFloodGuard_IsolatesClients verifies one client's budget does not affect another
func TestFloodGuard_IsolatesClients(t *testing.T) {
	handler := FloodGuard(FloodGuardConfig{RequestsPerMinute: 1})(okHandler())

	for _, addr := range []string{"192.0.2.20:1", "192.0.2.21:1"} {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = addr
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", addr, recorder.Code)
		}
	}
}

// TestFloodGuard_KeysOnForwardedIP verifies the guard uses the trusted-proxy-aware client address
func TestFloodGuard_KeysOnForwardedIP(t *testing.T) {
	config := FloodGuardConfig{
		RequestsPerMinute: 1,
		IPConfig:          &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}},
	}
	handler := FloodGuard(config)(okHandler())

	// Same proxy, different forwarded clients
	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", client)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", client, recorder.Code)
		}
	}
}

func TestDefaultFloodGuard(t *testing.T) {
	if got := DefaultFloodGuard().RequestsPerMinute; got != 120 {
		t.Errorf("expected 120 requests per minute, got %d", got)
	}
}
