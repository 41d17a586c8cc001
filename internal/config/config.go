package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/logingate/internal/models"
	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Limits LimitsConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TrustedProxies []string
}

type LimitsConfig struct {
	Policies            models.DimensionPolicies
	SweepInterval       time.Duration
	FloodGuardPerMinute int
}

const (
	defaultIPPolicies       = "5/1m,15/1h"
	defaultCookiePolicies   = "2/10s"
	defaultUsernamePolicies = "10/1h"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	policies, err := loadPolicies()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		Limits: LimitsConfig{
			Policies:            policies,
			SweepInterval:       getEnvAsDuration("HISTORY_SWEEP_INTERVAL", 5*time.Minute),
			FloodGuardPerMinute: getEnvAsInt("FLOOD_GUARD_PER_MINUTE", 120),
		},
	}

	if cfg.Limits.SweepInterval <= 0 {
		return nil, fmt.Errorf("HISTORY_SWEEP_INTERVAL must be positive (got %s)", cfg.Limits.SweepInterval)
	}
	if cfg.Limits.FloodGuardPerMinute <= 0 {
		return nil, fmt.Errorf("FLOOD_GUARD_PER_MINUTE must be positive (got %d)", cfg.Limits.FloodGuardPerMinute)
	}

	return cfg, nil
}

// loadPolicies reads the per-dimension window policies
func loadPolicies() (models.DimensionPolicies, error) {
	var policies models.DimensionPolicies
	var err error

	if policies.IP, err = models.ParseWindowPolicies(getEnv("LOGIN_LIMIT_IP", defaultIPPolicies)); err != nil {
		return policies, fmt.Errorf("LOGIN_LIMIT_IP: %w", err)
	}
	if policies.Cookie, err = models.ParseWindowPolicies(getEnv("LOGIN_LIMIT_COOKIE", defaultCookiePolicies)); err != nil {
		return policies, fmt.Errorf("LOGIN_LIMIT_COOKIE: %w", err)
	}
	if policies.Username, err = models.ParseWindowPolicies(getEnv("LOGIN_LIMIT_USERNAME", defaultUsernamePolicies)); err != nil {
		return policies, fmt.Errorf("LOGIN_LIMIT_USERNAME: %w", err)
	}

	return policies, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
