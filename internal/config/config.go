// Package config reads process settings from the environment.
// A .env file, when present, is loaded by main before FromEnv runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" or "console"

	DBPath     string
	ContentDir string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	DailySalt      string
	SessionIdleTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

const devSecret = "dev_secret_change_me"

// FromEnv builds a Config from environment variables, applying defaults.
// Every malformed value is reported in the returned error.
func FromEnv() (Config, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(get func(string) string) (Config, error) {
	env := func(k, def string) string {
		if v := strings.TrimSpace(get(k)); v != "" {
			return v
		}
		return def
	}
	var problems []string
	atoi := func(k string, def int) int {
		v := env(k, "")
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not an integer", k, v))
			return def
		}
		return n
	}

	c := Config{
		Port:           env("PORT", "5175"),
		LogLevel:       strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(env("LOG_FORMAT", "json")),
		DBPath:         env("DB_PATH", "data/learnplay.db"),
		ContentDir:     env("CONTENT_DIR", ""),
		JWTSecret:      env("JWT_SECRET", devSecret),
		JWTExpiresDays: atoi("JWT_EXPIRES_DAYS", 14),
		CookieName:     env("COOKIE_NAME", "learnplay_token"),
		ClientOrigin:   env("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     env("NODE_ENV", "development") == "production",
		DailySalt:      env("DAILY_SALT", "local_dev_salt"),
		SessionIdleTTL: 30 * time.Minute,
		RateLimitRPS:   10,
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 20),
	}

	if v := env("SESSION_IDLE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("SESSION_IDLE_TTL: %q is not a duration", v))
		} else {
			c.SessionIdleTTL = d
		}
	}
	if v := env("RATE_LIMIT_RPS", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("RATE_LIMIT_RPS: %q is not a number", v))
		} else {
			c.RateLimitRPS = f
		}
	}

	problems = append(problems, c.validate()...)
	if len(problems) > 0 {
		return c, errors.New("config: " + strings.Join(problems, "; "))
	}
	return c, nil
}

func (c Config) validate() []string {
	var p []string
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		p = append(p, fmt.Sprintf("PORT: %q is not a valid port", c.Port))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		p = append(p, fmt.Sprintf("LOG_FORMAT: %q must be json or console", c.LogFormat))
	}
	if c.JWTExpiresDays < 1 {
		p = append(p, "JWT_EXPIRES_DAYS must be positive")
	}
	if c.Production && c.JWTSecret == devSecret {
		p = append(p, "JWT_SECRET must be set in production")
	}
	if c.SessionIdleTTL < 0 {
		p = append(p, "SESSION_IDLE_TTL must not be negative")
	}
	if c.RateLimitRPS <= 0 {
		p = append(p, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst < 1 {
		p = append(p, "RATE_LIMIT_BURST must be at least 1")
	}
	return p
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// JWTTTL is the token lifetime.
func (c Config) JWTTTL() time.Duration { return time.Duration(c.JWTExpiresDays) * 24 * time.Hour }
