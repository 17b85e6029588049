package testutils

import (
	"time"

	"github.com/rideway/rideway/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Rideway Test",
			URL:         "http://localhost:8080",
			FrontendURL: "http://localhost:5173",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			SharedSecret: "test-shared-secret",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			DefaultOrigin:  "http://localhost:5173",
		},
		Auth: config.AuthConfig{
			MinLength:  6,
			BcryptCost: bcrypt.MinCost,
		},
		Verification: config.VerificationConfig{
			Expiry:            15 * time.Minute,
			ResendInterval:    time.Minute,
			MaxSendsPerWindow: 5,
			SendWindow:        time.Hour,
			MagicTokenLength:  32,
			AllowDevBypass:    false,
		},
		PasswordReset: config.PasswordResetConfig{
			Expiry:             time.Hour,
			TokenLength:        32,
			MaxRequestsPerHour: 5,
		},
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!",
			Issuer:        "rideway-test",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
			AnonExpiry:    time.Hour,
		},
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:     32,
			Expiry:          time.Hour,
			RotateOnUse:     true,
			CleanupInterval: time.Hour,
		},
		Revocation: config.RevocationConfig{
			Enabled:       true,
			Store:         "memory",
			CleanupPeriod: time.Minute,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:   true,
			Store:     "memory",
			Rate:      1000,
			Period:    time.Minute,
			CountMode: config.CountAll,
		},
		TOTP: config.TOTPConfig{
			Enabled: true,
			Issuer:  "Rideway Test",
		},
		Consent: config.ConsentConfig{
			CookieName: "rideway_consent",
			MaxAge:     time.Hour,
		},
		Retry: config.RetryConfig{
			MaxAttempts:    3,
			InitialDelay:   time.Millisecond,
			AttemptTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		Mail: config.MailConfig{
			Transport: "memory",
		},
	}
}
