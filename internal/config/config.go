// Package config loads runtime settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// Config holds runtime settings
type Config struct {
	Port           string
	Env            string
	APIBaseURL     string
	SecretKey      string
	APITimeout     time.Duration
	APIRetries     int           // extra attempts for idempotent upstream GETs
	SessionTTL     time.Duration
	LoginRateLimit int           // auth POSTs per client IP per minute
}

// Load reads the environment, applying defaults for local development
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", ":5000"),
		Env:            normalizeEnv(getEnv("APP_ENV", EnvDevelopment)),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		SecretKey:      getEnv("SECRET_KEY", ""),
		APITimeout:     getDurationEnv("API_TIMEOUT", 10*time.Second),
		APIRetries:     getIntEnv("API_RETRIES", 2),
		SessionTTL:     getDurationEnv("SESSION_TTL", 12*time.Hour),
		LoginRateLimit: getIntEnv("LOGIN_RATE_LIMIT", 10),
	}

	if !strings.HasPrefix(cfg.Port, ":") && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.APIRetries < 0 {
		cfg.APIRetries = 0
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		log.Printf("[Config] SECRET_KEY not set, generated an ephemeral key; sessions will not survive a restart")
	}

	return cfg
}

// GinMode maps the environment to a gin mode
func (c *Config) GinMode() string {
	switch c.Env {
	case EnvProduction:
		return gin.ReleaseMode
	case EnvTesting:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// SecureCookies reports whether cookies should carry the Secure flag
func (c *Config) SecureCookies() bool {
	return c.Env == EnvProduction
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvProduction:
		return EnvProduction
	case EnvTesting:
		return EnvTesting
	default:
		return EnvDevelopment
	}
}

func randomSecret() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("[Config] failed to generate secret key: %v", err)
	}
	return hex.EncodeToString(b)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
