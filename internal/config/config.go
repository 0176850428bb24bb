package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Runtime
	Env  string
	Port string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Cache
	RedisURL string
	CacheTTL time.Duration

	// Admin
	AdminEmails string

	// Pricing policy defaults (overridable through platform settings)
	TravelerFeePercent int
	CommissionPercent  int
	CommissionMin      int64
	Currency           string

	// Reviews
	ReviewEditWindow time.Duration

	// HTTP
	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Observability
	SentryDSN        string
	LogRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	prod := env == "production"

	rateMax, rateWindow := 1000, 15*time.Minute
	if prod {
		rateMax = 100
	}

	return &Config{
		Env:  env,
		Port: getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "guide_marketplace"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: parseDuration(getEnv("CACHE_TTL", "5m"), 5*time.Minute),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		TravelerFeePercent: parseInt(getEnv("TRAVELER_FEE_PERCENT", "10"), 10),
		CommissionPercent:  parseInt(getEnv("COMMISSION_PERCENT", "15"), 15),
		CommissionMin:      int64(parseInt(getEnv("COMMISSION_MIN", "5"), 5)),
		Currency:           strings.ToUpper(getEnv("CURRENCY", "EUR")),

		ReviewEditWindow: parseDuration(getEnv("REVIEW_EDIT_WINDOW", "24h"), 24*time.Hour),

		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		RateLimitMax:    parseInt(getEnv("RATE_LIMIT_MAX", ""), rateMax),
		RateLimitWindow: parseDuration(getEnv("RATE_LIMIT_WINDOW", ""), rateWindow),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
