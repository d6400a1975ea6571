package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	ServerPort  string
	ServerHost  string
	Environment string

	AccessTokenSecret  string
	RefreshTokenSecret string
	BcryptCost         int
	CookieSecure       bool

	StoreDriver   string
	StoreTimeout  time.Duration
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	RedisURL                 string
	RateLimitEnabled         bool
	RateLimitBackend         string
	RateLimitLoginAttempts   int
	RateLimitLoginWindow     time.Duration
	RateLimitRefreshAttempts int
	RateLimitRefreshWindow   time.Duration

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers
	// name the client. Empty means the peer address is the client.
	TrustedProxies []string

	LogLevel  string
	LogFormat string

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

var (
	ErrMissingAccessSecret  = errors.New("ACCESS_TOKEN_SECRET is required")
	ErrMissingRefreshSecret = errors.New("REFRESH_TOKEN_SECRET is required")
	ErrSharedTokenSecret    = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
	ErrMissingMongoURI      = errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
	ErrInvalidStoreDriver   = errors.New("STORE_DRIVER must be one of mongo, postgres, memory")
	ErrInvalidDuration      = errors.New("invalid duration format")
)

// Load reads configuration from the environment, after merging a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnvOrDefault("PORT", "5000"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", ""),
		Environment: getEnvOrDefault("ENV", "development"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		BcryptCost:         getEnvOrDefaultInt("BCRYPT_COST", 10),
		CookieSecure:       getEnvOrDefaultBool("COOKIE_SECURE", true),

		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverMongo)),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "bookworm"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		RedisURL:                 getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:         getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitBackend:         getEnvOrDefault("RATE_LIMIT_BACKEND", "memory"),
		RateLimitLoginAttempts:   getEnvOrDefaultInt("RATE_LIMIT_LOGIN_ATTEMPTS", 10),
		RateLimitRefreshAttempts: getEnvOrDefaultInt("RATE_LIMIT_REFRESH_ATTEMPTS", 30),

		TrustedProxies: parseList(getEnvOrDefault("TRUSTED_PROXIES", "")),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.AccessTokenSecret == "" {
		return nil, ErrMissingAccessSecret
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, ErrMissingRefreshSecret
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, ErrSharedTokenSecret
	}

	switch cfg.StoreDriver {
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			return nil, ErrMissingMongoURI
		}
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	case StoreDriverMemory:
	default:
		return nil, ErrInvalidStoreDriver
	}

	var err error
	if cfg.StoreTimeout, err = getEnvOrDefaultDuration("STORE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitLoginWindow, err = getEnvOrDefaultDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRefreshWindow, err = getEnvOrDefaultDuration("RATE_LIMIT_REFRESH_WINDOW", time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvOrDefaultDuration accepts plain seconds ("900") or a Go duration ("15m").
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return d, nil
}

func parseList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
