package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/logingate/internal/models"
	pkghttp "github.com/BradenHooton/logingate/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAdmissionService implements AdmissionServiceInterface for testing
type MockAdmissionService struct {
	EvaluateFunc    func(ctx context.Context, attempt models.LoginAttempt) models.Decision
	PoliciesFunc    func() models.DimensionPolicies
	TrackedKeysFunc func() map[models.Dimension]int
	HistoryFunc     func(dimension models.Dimension, key string) ([]time.Time, error)

	// Attempts records every attempt passed to Evaluate
	Attempts []models.LoginAttempt
}

func (m *MockAdmissionService) Evaluate(ctx context.Context, attempt models.LoginAttempt) models.Decision {
	m.Attempts = append(m.Attempts, attempt)
	if m.EvaluateFunc == nil {
		return models.Decision{ID: "test-decision", Allowed: true}
	}
	return m.EvaluateFunc(ctx, attempt)
}

func (m *MockAdmissionService) Policies() models.DimensionPolicies {
	if m.PoliciesFunc == nil {
		return models.DefaultDimensionPolicies()
	}
	return m.PoliciesFunc()
}

func (m *MockAdmissionService) TrackedKeys() map[models.Dimension]int {
	if m.TrackedKeysFunc == nil {
		return map[models.Dimension]int{}
	}
	return m.TrackedKeysFunc()
}

func (m *MockAdmissionService) History(dimension models.Dimension, key string) ([]time.Time, error) {
	if m.HistoryFunc == nil {
		return nil, nil
	}
	return m.HistoryFunc(dimension, key)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
//
// Example usage:
//
//	req := httptest.NewRequest("GET", "/auth/login/history/ip?key=1.2.3.4", nil)
//	req = WithChiRouteContext(req, map[string]string{
//	    "dimension": "ip",
//	})
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
