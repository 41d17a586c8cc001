package models

import "time"

// Dimension identifies one of the independent rate limiting axes
type Dimension string

const (
	DimensionIP       Dimension = "ip"
	DimensionCookie   Dimension = "cookie"
	DimensionUsername Dimension = "username"
)

// Dimensions lists every dimension in evaluation order
var Dimensions = []Dimension{DimensionIP, DimensionCookie, DimensionUsername}

// ParseDimension maps a path or config value to a Dimension
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionIP, DimensionCookie, DimensionUsername:
		return Dimension(s), nil
	default:
		return "", ErrUnknownDimension
	}
}

// LoginAttempt carries the three keys of one incoming login request.
// An empty CookieID means the caller supplied no session identifier.
type LoginAttempt struct {
	IPAddress string
	CookieID  string
	Username  string
}

// HasCookie reports whether the cookie dimension applies to this attempt
func (a LoginAttempt) HasCookie() bool {
	return a.CookieID != ""
}

// KeyFor returns the attempt's key for the given dimension
func (a LoginAttempt) KeyFor(d Dimension) string {
	switch d {
	case DimensionIP:
		return a.IPAddress
	case DimensionCookie:
		return a.CookieID
	case DimensionUsername:
		return a.Username
	default:
		return ""
	}
}

// Decision is the outcome of evaluating one LoginAttempt
type Decision struct {
	ID          string
	Allowed     bool
	Reason      string    // LoginLimitMessage when rejected
	Dimension   Dimension // Dimension that rejected the attempt; internal only
	EvaluatedAt time.Time
}

// Err returns ErrRateLimitExceeded for a rejected decision and nil otherwise
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return ErrRateLimitExceeded
}
