package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/logingate/internal/models"
	pkghttp "github.com/BradenHooton/logingate/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AdmissionServiceInterface defines the admission decisions the handler needs
type AdmissionServiceInterface interface {
	Evaluate(ctx context.Context, attempt models.LoginAttempt) models.Decision
	Policies() models.DimensionPolicies
	TrackedKeys() map[models.Dimension]int
	History(dimension models.Dimension, key string) ([]time.Time, error)
}

// AdmissionHandler handles login admission HTTP requests
type AdmissionHandler struct {
	service    AdmissionServiceInterface
	ipConfig   *pkghttp.IPConfig
	cookieName string
}

// NewAdmissionHandler creates a new AdmissionHandler
func NewAdmissionHandler(service AdmissionServiceInterface, ipConfig *pkghttp.IPConfig) *AdmissionHandler {
	return &AdmissionHandler{
		service:    service,
		ipConfig:   ipConfig,
		cookieName: pkghttp.DefaultSessionCookie,
	}
}

// Request DTOs

// AdmissionRequest represents the request body for an admission check
type AdmissionRequest struct {
	Username string `json:"username" validate:"required,max=320"`
	CookieID string `json:"cookie_id,omitempty" validate:"omitempty,max=512"`
}

// Response DTOs

// AdmissionResponse is returned when the attempt may proceed
type AdmissionResponse struct {
	Allowed   bool   `json:"allowed"`
	AttemptID string `json:"attempt_id"`
}

// PolicyResponse describes one window policy
type PolicyResponse struct {
	Limit         int     `json:"limit"`
	Window        string  `json:"window"`
	WindowSeconds float64 `json:"window_seconds"`
}

// HistoryResponse lists the retained admitted attempts of one key
type HistoryResponse struct {
	Dimension string      `json:"dimension"`
	Count     int         `json:"count"`
	Events    []time.Time `json:"events"`
}

// HealthResponse reports liveness and tracked key counts
type HealthResponse struct {
	Status      string         `json:"status"`
	TrackedKeys map[string]int `json:"tracked_keys"`
}

// Admit decides whether a login attempt may proceed
// @Summary Login admission check
// @Accept json
// @Param request body AdmissionRequest true "Admission request"
// @Produce json
// @Success 200 {object} AdmissionResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /auth/login/admission [post]
func (h *AdmissionHandler) Admit(w http.ResponseWriter, r *http.Request) {
	var req AdmissionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	// Body value wins over the session cookie; neither means the cookie dimension is skipped
	cookieID := strings.TrimSpace(req.CookieID)
	if cookieID == "" {
		cookieID = pkghttp.ExtractSessionID(r, h.cookieName)
	}

	decision := h.service.Evaluate(r.Context(), models.LoginAttempt{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		CookieID:  cookieID,
		Username:  req.Username,
	})
	if err := decision.Err(); err != nil {
		pkghttp.WriteTooManyRequests(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AdmissionResponse{
		Allowed:   true,
		AttemptID: decision.ID,
	})
}

// Policies returns the active window policies per dimension
func (h *AdmissionHandler) Policies(w http.ResponseWriter, r *http.Request) {
	policies := h.service.Policies()

	resp := make(map[string][]PolicyResponse, len(models.Dimensions))
	for _, d := range models.Dimensions {
		for _, p := range policies.For(d) {
			resp[string(d)] = append(resp[string(d)], PolicyResponse{
				Limit:         p.Limit,
				Window:        p.Window.String(),
				WindowSeconds: p.Window.Seconds(),
			})
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Health reports liveness and how many keys each dimension tracks
func (h *AdmissionHandler) Health(w http.ResponseWriter, r *http.Request) {
	counts := h.service.TrackedKeys()

	tracked := make(map[string]int, len(counts))
	for d, n := range counts {
		tracked[string(d)] = n
	}

	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		TrackedKeys: tracked,
	})
}

// History returns the retained admitted attempts for one key.
// The key travels in the query so that usernames containing '/' stay addressable.
// @Param key query string true "Rate limit key"
// @Router /auth/login/history/{dimension} [get]
func (h *AdmissionHandler) History(w http.ResponseWriter, r *http.Request) {
	dimension, err := models.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		pkghttp.WriteNotFound(w, "Unknown dimension")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		pkghttp.WriteBadRequest(w, "Query parameter key is required")
		return
	}

	events, err := h.service.History(dimension, key)
	if err != nil {
		if errors.Is(err, models.ErrUnknownDimension) {
			pkghttp.WriteNotFound(w, "Unknown dimension")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if events == nil {
		events = []time.Time{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, HistoryResponse{
		Dimension: string(dimension),
		Count:     len(events),
		Events:    events,
	})
}
