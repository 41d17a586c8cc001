package logger

import (
	"encoding/hex"
	"log/slog"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// KeyFingerprint returns a short stable digest of a rate limit key. The same key
// always maps to the same fingerprint, so log lines stay correlatable.
func KeyFingerprint(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// MaskedKeyAttr returns a slog attribute for a rate limit key.
// In development the raw value is logged; elsewhere only its fingerprint.
func MaskedKeyAttr(name, key, env string) slog.Attr {
	if env == "development" {
		return slog.String(name, key)
	}
	if key == "" {
		return slog.String(name, "")
	}
	return slog.String(name, "fp:"+KeyFingerprint(key))
}

// SanitizeQueryString checks if query string contains sensitive parameters
// and returns true if the entire query string should be redacted
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"username",
		"cookie",
		"session",
		"auth",
		"key",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
