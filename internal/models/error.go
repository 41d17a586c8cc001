package models

import "errors"

// LoginLimitMessage is the only reason ever reported for a rejected login attempt
const LoginLimitMessage = "login limit reached"

// Sentinel errors for admission failures
var (
	ErrRateLimitExceeded = errors.New(LoginLimitMessage)
	ErrInvalidPolicy     = errors.New("invalid window policy")
	ErrUnknownDimension  = errors.New("unknown dimension")
)
