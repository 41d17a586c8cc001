package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/logingate/internal/models"
	"github.com/BradenHooton/logingate/internal/repositories"
	pkglogger "github.com/BradenHooton/logingate/pkg/logger"
	"github.com/google/uuid"
)

// HistoryStore defines the per-dimension history operations the evaluator needs
type HistoryStore interface {
	Acquire(key string) *repositories.HistoryHandle
	GetHistory(key string) []time.Time
	Sweep(now time.Time, retention time.Duration) int
	Len() int
}

// RateLimitStores holds one history store per dimension
type RateLimitStores struct {
	IP       HistoryStore
	Cookie   HistoryStore
	Username HistoryStore
}

// NewMemoryStores creates in-memory stores sized for the given policies
func NewMemoryStores(policies models.DimensionPolicies) RateLimitStores {
	return RateLimitStores{
		IP:       repositories.NewLoginHistoryRepository(models.MaxLimit(policies.IP)),
		Cookie:   repositories.NewLoginHistoryRepository(models.MaxLimit(policies.Cookie)),
		Username: repositories.NewLoginHistoryRepository(models.MaxLimit(policies.Username)),
	}
}

// RateLimitConfig holds configuration for admission decisions
type RateLimitConfig struct {
	Policies models.DimensionPolicies
	NowFn    func() time.Time // Defaults to time.Now
}

// RateLimitService decides whether a login attempt may proceed
type RateLimitService struct {
	stores      map[models.Dimension]HistoryStore
	policies    models.DimensionPolicies
	nowFn       func() time.Time
	auditLogger *pkglogger.AuditLogger
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(stores RateLimitStores, config RateLimitConfig, auditLogger *pkglogger.AuditLogger) (*RateLimitService, error) {
	if err := config.Policies.Validate(); err != nil {
		return nil, err
	}
	if stores.IP == nil || stores.Cookie == nil || stores.Username == nil {
		return nil, fmt.Errorf("rate limit service: every dimension needs a history store")
	}
	// Key locks are not reentrant; a shared store deadlocks when two dimensions carry the same key
	if stores.IP == stores.Cookie || stores.IP == stores.Username || stores.Cookie == stores.Username {
		return nil, fmt.Errorf("rate limit service: each dimension needs its own history store")
	}

	nowFn := config.NowFn
	if nowFn == nil {
		nowFn = time.Now
	}
	if auditLogger == nil {
		auditLogger = pkglogger.NewAuditLogger(slog.Default(), "development")
	}

	return &RateLimitService{
		stores: map[models.Dimension]HistoryStore{
			models.DimensionIP:       stores.IP,
			models.DimensionCookie:   stores.Cookie,
			models.DimensionUsername: stores.Username,
		},
		policies:    config.Policies,
		nowFn:       nowFn,
		auditLogger: auditLogger,
	}, nil
}

type heldHistory struct {
	dimension models.Dimension
	handle    *repositories.HistoryHandle
}

// Evaluate checks every dimension of the attempt and records it only if all pass.
//
// Per-key locks are taken in dimension order (IP, cookie, username) and held until
// the decision is recorded, so two concurrent attempts on the same key can never
// both see room under a limit. A rejection records nothing.
//
// The clock is read only once every lock is held. A sweep that dropped one of the
// keys while this call waited ran with an earlier time, so nothing it removed
// could still fall inside a window ending at now.
func (s *RateLimitService) Evaluate(ctx context.Context, attempt models.LoginAttempt) models.Decision {
	decision := models.Decision{ID: uuid.NewString()}

	held := make([]heldHistory, 0, len(models.Dimensions))
	for _, d := range models.Dimensions {
		if d == models.DimensionCookie && !attempt.HasCookie() {
			continue
		}
		held = append(held, heldHistory{
			dimension: d,
			handle:    s.stores[d].Acquire(attempt.KeyFor(d)),
		})
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].handle.Release()
		}
	}()

	now := s.nowFn()
	decision.EvaluatedAt = now

	for _, h := range held {
		if violatesAny(h.handle.History(), s.policies.For(h.dimension), now) {
			decision.Reason = models.LoginLimitMessage
			decision.Dimension = h.dimension
			s.auditLogger.LogAdmission(ctx, pkglogger.AdmissionEvent{
				DecisionID: decision.ID,
				Allowed:    false,
				Dimension:  string(h.dimension),
				IPAddress:  attempt.IPAddress,
				CookieID:   attempt.CookieID,
				Username:   attempt.Username,
				Reason:     decision.Reason,
			})
			return decision
		}
	}

	for _, h := range held {
		h.handle.Record(now)
	}
	decision.Allowed = true

	s.auditLogger.LogAdmission(ctx, pkglogger.AdmissionEvent{
		DecisionID: decision.ID,
		Allowed:    true,
		IPAddress:  attempt.IPAddress,
		CookieID:   attempt.CookieID,
		Username:   attempt.Username,
	})
	return decision
}

// CheckLogin is Evaluate for callers that only need the error signal.
// It returns models.ErrRateLimitExceeded when the attempt is rejected.
func (s *RateLimitService) CheckLogin(ctx context.Context, ipAddress, cookieID, username string) error {
	return s.Evaluate(ctx, models.LoginAttempt{
		IPAddress: ipAddress,
		CookieID:  cookieID,
		Username:  username,
	}).Err()
}

// History returns a snapshot of a key's admitted attempts, oldest first
func (s *RateLimitService) History(dimension models.Dimension, key string) ([]time.Time, error) {
	store, ok := s.stores[dimension]
	if !ok {
		return nil, models.ErrUnknownDimension
	}
	return store.GetHistory(key), nil
}

// Policies returns the active policy table
func (s *RateLimitService) Policies() models.DimensionPolicies {
	return s.policies
}

// TrackedKeys returns the number of keys held per dimension
func (s *RateLimitService) TrackedKeys() map[models.Dimension]int {
	counts := make(map[models.Dimension]int, len(s.stores))
	for d, store := range s.stores {
		counts[d] = store.Len()
	}
	return counts
}

// SweepExpired drops keys whose newest attempt is older than the dimension's longest window.
// Such keys can no longer influence any decision.
func (s *RateLimitService) SweepExpired() map[models.Dimension]int {
	now := s.nowFn()
	removed := make(map[models.Dimension]int, len(s.stores))
	for _, d := range models.Dimensions {
		retention := models.MaxWindow(s.policies.For(d))
		removed[d] = s.stores[d].Sweep(now, retention)
	}
	return removed
}
