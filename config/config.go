package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig           `envPrefix:"RIDEWAY_APP_"`
	Server        ServerConfig        `envPrefix:"RIDEWAY_SERVER_"`
	CORS          CORSConfig          `envPrefix:"RIDEWAY_CORS_"`
	Log           LogConfig           `envPrefix:"RIDEWAY_LOG_"`
	Database      DatabaseConfig      `envPrefix:"RIDEWAY_DB_"`
	Mail          MailConfig          `envPrefix:"RIDEWAY_MAIL_"`
	Auth          AuthConfig          `envPrefix:"RIDEWAY_AUTH_"`
	Verification  VerificationConfig  `envPrefix:"RIDEWAY_VERIFICATION_"`
	PasswordReset PasswordResetConfig `envPrefix:"RIDEWAY_PWRESET_"`
	Session       SessionConfig       `envPrefix:"RIDEWAY_SESSION_"`
	JWT           JWTConfig           `envPrefix:"RIDEWAY_JWT_"`
	RefreshToken  RefreshTokenConfig  `envPrefix:"RIDEWAY_REFRESH_"`
	Revocation    RevocationConfig    `envPrefix:"RIDEWAY_REVOCATION_"`
	RateLimit     RateLimitConfig     `envPrefix:"RIDEWAY_RATELIMIT_"`
	TOTP          TOTPConfig          `envPrefix:"RIDEWAY_TOTP_"`
	Consent       ConsentConfig       `envPrefix:"RIDEWAY_CONSENT_"`
	Retry         RetryConfig         `envPrefix:"RIDEWAY_RETRY_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"Rideway"`
	URL         string `env:"URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	Environment string `env:"ENV" envDefault:"development"`
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
	// SharedSecret protects the verification and reset endpoints. It is a
	// server-to-server credential distinct from the public anon key.
	SharedSecret string `env:"SHARED_SECRET"`
}

type CORSConfig struct {
	// AllowedOrigins is the explicit allow-list. Requests from any other
	// origin receive DefaultOrigin in the response header instead.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	DefaultOrigin  string   `env:"DEFAULT_ORIGIN" envDefault:"http://localhost:5173"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"rideway.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	// Transport selects the mailer implementation: "smtp" or "memory".
	// The memory mailer records messages instead of dispatching them and is
	// selected by configuration at startup, never by hostname sniffing.
	Transport   string `env:"TRANSPORT" envDefault:"smtp"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"Rideway"`
}

type AuthConfig struct {
	MinLength  int `env:"MIN_LENGTH" envDefault:"6"`
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

type VerificationConfig struct {
	Expiry            time.Duration `env:"EXPIRY" envDefault:"15m"`
	ResendInterval    time.Duration `env:"RESEND_INTERVAL" envDefault:"60s"`
	MaxSendsPerWindow int           `env:"MAX_SENDS_PER_WINDOW" envDefault:"5"`
	SendWindow        time.Duration `env:"SEND_WINDOW" envDefault:"1h"`
	MagicTokenLength  int           `env:"MAGIC_TOKEN_LENGTH" envDefault:"32"`
	// AllowDevBypass accepts verification IDs carrying the reserved dev
	// prefix. Refused outright when App.Environment is production.
	AllowDevBypass bool `env:"ALLOW_DEV_BYPASS" envDefault:"false"`
}

type PasswordResetConfig struct {
	Expiry             time.Duration `env:"EXPIRY" envDefault:"1h"`
	TokenLength        int           `env:"TOKEN_LENGTH" envDefault:"32"`
	MaxRequestsPerHour int           `env:"MAX_REQUESTS_PER_HOUR" envDefault:"5"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"database"`
	Name     string        `env:"NAME" envDefault:"rideway_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"720h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type JWTConfig struct {
	SecretKey     string        `env:"SECRET_KEY"`
	Issuer        string        `env:"ISSUER" envDefault:"rideway"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"1h"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
	// AnonExpiry bounds the anon keys handed to the SPA for calling the
	// function routes.
	AnonExpiry time.Duration `env:"ANON_EXPIRY" envDefault:"8760h"`
}

type RefreshTokenConfig struct {
	TokenLength     int           `env:"TOKEN_LENGTH" envDefault:"32"`
	Expiry          time.Duration `env:"EXPIRY" envDefault:"168h"`
	RotateOnUse     bool          `env:"ROTATE_ON_USE" envDefault:"true"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type RevocationConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"true"`
	Store         string        `env:"STORE" envDefault:"memory"`
	CleanupPeriod time.Duration `env:"CLEANUP_PERIOD" envDefault:"5m"`
}

type CountingMode string

const (
	CountAll      CountingMode = "all"
	CountFailures CountingMode = "failures"
	CountSuccess  CountingMode = "success"
)

type RateLimitConfig struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Store     string        `env:"STORE" envDefault:"memory"`
	Rate      int           `env:"RATE" envDefault:"60"`
	Period    time.Duration `env:"PERIOD" envDefault:"1m"`
	CountMode CountingMode  `env:"COUNT_MODE" envDefault:"all"`
}

type TOTPConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Issuer  string `env:"ISSUER" envDefault:"Rideway"`
}

type ConsentConfig struct {
	CookieName   string        `env:"COOKIE_NAME" envDefault:"rideway_consent"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`
	MaxAge       time.Duration `env:"MAX_AGE" envDefault:"4380h"`
}

type RetryConfig struct {
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialDelay   time.Duration `env:"INITIAL_DELAY" envDefault:"250ms"`
	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"10s"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
