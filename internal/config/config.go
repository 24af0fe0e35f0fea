package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	LogJSON     bool

	// Session
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool
	SignupEnabled     bool
	AllowedOrigin     string

	// Redis (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Assistant proxy
	AssistantURL     string
	AssistantTimeout time.Duration

	// Rate limits
	APIRateLimit        int
	APIRateWindow       time.Duration
	AuthRateLimit       int
	AuthRateWindow      time.Duration
	AssistantRateLimit  int
	AssistantRateWindow time.Duration
}

// Load reads .env (if present) and the environment. Missing required
// settings are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds a Config from lookup.
func Parse(lookup func(string) string) (*Config, error) {
	dbURL := lookup("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := lookup("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	port := lookup("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := lookup("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	cookieName := lookup("SESSION_COOKIE_NAME")
	if cookieName == "" {
		cookieName = "session_token"
	}

	logLevel := strings.ToLower(lookup("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:     port,
		AppVersion:  version,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		LogLevel:    logLevel,
		LogJSON:     lookup("LOG_JSON") == "true",

		SessionTTL:        time.Duration(positiveInt(lookup, "SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionCookieName: cookieName,
		CookieSecure:      lookup("COOKIE_SECURE") == "true",
		SignupEnabled:     lookup("SIGNUP_ENABLED") != "false",
		AllowedOrigin:     lookup("ALLOWED_ORIGIN"),

		RedisAddr:     lookup("REDIS_ADDR"),
		RedisPassword: lookup("REDIS_PASSWORD"),
		RedisDB:       nonNegativeInt(lookup, "REDIS_DB", 0),

		AssistantURL:     strings.TrimRight(lookup("ASSISTANT_URL"), "/"),
		AssistantTimeout: seconds(lookup, "ASSISTANT_TIMEOUT_SECONDS", 60),

		APIRateLimit:        positiveInt(lookup, "API_RATE_LIMIT", 120),
		APIRateWindow:       seconds(lookup, "API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:       positiveInt(lookup, "AUTH_RATE_LIMIT", 10),
		AuthRateWindow:      seconds(lookup, "AUTH_RATE_WINDOW_SECONDS", 60),
		AssistantRateLimit:  positiveInt(lookup, "ASSISTANT_RATE_LIMIT", 20),
		AssistantRateWindow: seconds(lookup, "ASSISTANT_RATE_WINDOW_SECONDS", 60),
	}, nil
}

// UsesSQLite reports whether DatabaseURL points at a SQLite file.
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite:")
}

// SQLitePath returns the file path of a sqlite: DatabaseURL.
func (c *Config) SQLitePath() string {
	p := strings.TrimPrefix(c.DatabaseURL, "sqlite:")
	return strings.TrimPrefix(p, "//")
}

func positiveInt(lookup func(string) string, key string, def int) int {
	if v := lookup(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(lookup func(string) string, key string, def int) int {
	if v := lookup(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func seconds(lookup func(string) string, key string, def int) time.Duration {
	return time.Duration(positiveInt(lookup, key, def)) * time.Second
}
