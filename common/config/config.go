package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// AuthConfig holds authentication and session settings
type AuthConfig struct {
	// JWTSecretKey signs and verifies session tokens. Tokens signed with
	// a different key are rejected.
	JWTSecretKey string
	JWTIssuer    string
	JWTAudience  string

	// SessionHours is the default token lifetime; ExtendedSessionHours is
	// used when the client asks to stay logged in.
	SessionHours         int
	ExtendedSessionHours int

	// Password recovery throttling
	RecoveryMaxRequests  int
	RecoveryWindowMins   int
	ResetTokenTTLMinutes int

	// BaseURL is the public address used to build password-reset links
	BaseURL string
}

var (
	globalAuth *AuthConfig
	authOnce   sync.Once
)

// LoadAuthConfig reads authentication settings from environment variables.
// Missing values fall back to development defaults.
func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		globalAuth = &AuthConfig{
			JWTSecretKey:         getEnv("JWT_SECRET_KEY", "your-super-secret-key-change-in-production"),
			JWTIssuer:            getEnv("JWT_ISSUER", "https://localhost:5001"),
			JWTAudience:          getEnv("JWT_AUDIENCE", "https://localhost:5001"),
			SessionHours:         getEnvInt("SESSION_HOURS", 8),
			ExtendedSessionHours: getEnvInt("EXTENDED_SESSION_HOURS", 168),
			RecoveryMaxRequests:  getEnvInt("RECOVERY_MAX_REQUESTS", 3),
			RecoveryWindowMins:   getEnvInt("RECOVERY_WINDOW_MINUTES", 15),
			ResetTokenTTLMinutes: getEnvInt("RESET_TOKEN_TTL_MINUTES", 60),
			BaseURL:              getEnv("APP_BASE_URL", "http://localhost:3000"),
		}
	})
	return globalAuth
}

// ResetTokenTTL returns the reset token lifetime as a duration
func (c *AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
