package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/config"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	CountMode      config.CountingMode
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}

	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = IPKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	if cfg.CountMode == "" {
		cfg.CountMode = config.CountAll
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)
			now := time.Now()
			resetTime := now.Add(cfg.Period)

			count, existingResetTime, exists := cfg.Store.Get(key)
			if exists {
				resetTime = existingResetTime
			}

			if count >= cfg.Rate {
				setLimitHeaders(c, cfg.Rate, 0, resetTime)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(resetTime, now)))
				return cfg.OnLimitReached(c)
			}

			var newCount int
			if cfg.CountMode == config.CountAll {
				newCount = cfg.Store.Increment(key, resetTime)
			} else {
				newCount = count + 1
				cfg.Store.Set(key, newCount, resetTime)
			}

			setLimitHeaders(c, cfg.Rate, max(cfg.Rate-newCount, 0), resetTime)

			err := next(c)

			if cfg.CountMode != config.CountAll {
				statusCode := c.Response().Status
				shouldCount := false

				switch cfg.CountMode {
				case config.CountFailures:
					shouldCount = statusCode >= 400
				case config.CountSuccess:
					shouldCount = statusCode < 400
				}

				if shouldCount {
					cfg.Store.Increment(key, resetTime)
				} else if count > 0 {
					cfg.Store.Set(key, count, resetTime)
				} else {
					cfg.Store.Reset(key)
				}
			}

			return err
		}
	}
}

func setLimitHeaders(c echo.Context, limit, remaining int, resetTime time.Time) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

func retryAfterSeconds(resetTime, now time.Time) int {
	seconds := int(resetTime.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

func IPKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}
	return "rate_limit:" + realIP
}

// EndpointKeyGenerator scopes the counter to path plus client IP, so OTP
// sends and reset requests have separate budgets.
func EndpointKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}
	return fmt.Sprintf("rate_limit:%s:%s", c.Path(), realIP)
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}

func NewStore(cfg *config.RateLimitConfig) Store {
	switch cfg.Store {
	case "memory":
		fallthrough
	default:
		return NewMemoryStore()
	}
}
