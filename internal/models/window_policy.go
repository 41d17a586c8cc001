package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WindowPolicy allows at most Limit events inside any trailing Window
type WindowPolicy struct {
	Limit  int           `json:"limit"`
	Window time.Duration `json:"window"`
}

// Validate rejects non-positive limits and windows
func (p WindowPolicy) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive (got %d)", ErrInvalidPolicy, p.Limit)
	}
	if p.Window <= 0 {
		return fmt.Errorf("%w: window must be positive (got %s)", ErrInvalidPolicy, p.Window)
	}
	return nil
}

func (p WindowPolicy) String() string {
	return fmt.Sprintf("%d/%s", p.Limit, p.Window)
}

// ParseWindowPolicies parses "<limit>/<duration>[,<limit>/<duration>...]", e.g. "5/1m,15/1h"
func ParseWindowPolicies(raw string) ([]WindowPolicy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty policy list", ErrInvalidPolicy)
	}

	var policies []WindowPolicy
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		limitStr, windowStr, ok := strings.Cut(part, "/")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not <limit>/<duration>", ErrInvalidPolicy, part)
		}

		limit, err := strconv.Atoi(strings.TrimSpace(limitStr))
		if err != nil {
			return nil, fmt.Errorf("%w: limit %q: %v", ErrInvalidPolicy, limitStr, err)
		}
		window, err := time.ParseDuration(strings.TrimSpace(windowStr))
		if err != nil {
			return nil, fmt.Errorf("%w: window %q: %v", ErrInvalidPolicy, windowStr, err)
		}

		policy := WindowPolicy{Limit: limit, Window: window}
		if err := policy.Validate(); err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}

	return policies, nil
}

// DimensionPolicies holds the policy set of every dimension.
// All policies of a dimension must hold for an attempt to pass.
type DimensionPolicies struct {
	IP       []WindowPolicy `json:"ip"`
	Cookie   []WindowPolicy `json:"cookie"`
	Username []WindowPolicy `json:"username"`
}

// DefaultDimensionPolicies returns the stock thresholds
func DefaultDimensionPolicies() DimensionPolicies {
	return DimensionPolicies{
		IP: []WindowPolicy{
			{Limit: 5, Window: time.Minute},
			{Limit: 15, Window: time.Hour},
		},
		Cookie: []WindowPolicy{
			{Limit: 2, Window: 10 * time.Second},
		},
		Username: []WindowPolicy{
			{Limit: 10, Window: time.Hour},
		},
	}
}

// For returns the policies configured for a dimension
func (dp DimensionPolicies) For(d Dimension) []WindowPolicy {
	switch d {
	case DimensionIP:
		return dp.IP
	case DimensionCookie:
		return dp.Cookie
	case DimensionUsername:
		return dp.Username
	default:
		return nil
	}
}

// Validate requires at least one valid policy per dimension
func (dp DimensionPolicies) Validate() error {
	for _, d := range Dimensions {
		policies := dp.For(d)
		if len(policies) == 0 {
			return fmt.Errorf("%w: no policies for dimension %s", ErrInvalidPolicy, d)
		}
		for _, p := range policies {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("dimension %s: %w", d, err)
			}
		}
	}
	return nil
}

// MaxLimit returns the largest limit among policies, which bounds the history a key needs
func MaxLimit(policies []WindowPolicy) int {
	largest := 0
	for _, p := range policies {
		if p.Limit > largest {
			largest = p.Limit
		}
	}
	return largest
}

// MaxWindow returns the longest window among policies
func MaxWindow(policies []WindowPolicy) time.Duration {
	var longest time.Duration
	for _, p := range policies {
		if p.Window > longest {
			longest = p.Window
		}
	}
	return longest
}
