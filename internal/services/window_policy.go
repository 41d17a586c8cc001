package services

import (
	"time"

	"github.com/BradenHooton/logingate/internal/models"
)

// ViolatesLimit reports whether history already holds policy.Limit events inside the
// trailing policy.Window ending at now.
//
// history is ordered oldest first, so the Limit-th most recent event sits at
// len(history)-Limit; equal timestamps keep their insertion order. The window
// edge itself does not count: an event exactly Window old no longer rejects.
func ViolatesLimit(history []time.Time, policy models.WindowPolicy, now time.Time) bool {
	if policy.Limit <= 0 || len(history) < policy.Limit {
		return false
	}
	boundary := history[len(history)-policy.Limit]
	return now.Sub(boundary) < policy.Window
}

// violatesAny reports whether any of the policies is violated
func violatesAny(history []time.Time, policies []models.WindowPolicy, now time.Time) bool {
	for _, policy := range policies {
		if ViolatesLimit(history, policy, now) {
			return true
		}
	}
	return false
}
