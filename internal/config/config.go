package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	Store string
	DBURL string

	DBMaxConns int32

	JWTSecret     string
	JWTTTLMinutes int

	AdminEmail    string
	AdminPassword string
	AdminName     string
	SeedDemoUsers int

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	CORSAllowedOrigins []string
	OTLPEndpoint       string

	RateLimitAuthPerMinute int
}

const devJWTSecret = "dev-only-insecure-secret"

func Load() Config {
	// a missing .env file is fine; real deployments use the environment
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	adminEmail := getEnv("ADMIN_EMAIL", "")
	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if env == "dev" && adminEmail == "" && adminPassword == "" {
		adminEmail = "admin@example.com"
		adminPassword = "admin123"
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" && env == "dev" {
		jwtSecret = devJWTSecret
	}

	return Config{
		Env:                    env,
		Port:                   getEnvInt("PORT", 8000),
		Store:                  strings.ToLower(getEnv("STORE", "postgres")),
		DBURL:                  getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:             int32(getEnvInt("DB_MAX_CONNS", 5)),
		JWTSecret:              jwtSecret,
		JWTTTLMinutes:          getEnvInt("JWT_TTL_MINUTES", 60),
		AdminEmail:             adminEmail,
		AdminPassword:          adminPassword,
		AdminName:              getEnv("ADMIN_NAME", "Admin"),
		SeedDemoUsers:          getEnvInt("SEED_DEMO_USERS", 0),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:        getEnvInt("CACHE_TTL_SECONDS", 30),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		OTLPEndpoint:           getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RateLimitAuthPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 20),
	}
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.Env != "dev" && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set outside dev")
	}

	if c.Store != "postgres" && c.Store != "memory" {
		return errors.New("STORE must be postgres or memory")
	}

	if c.JWTTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}

	if c.RateLimitAuthPerMinute <= 0 {
		return errors.New("RATE_LIMIT_AUTH_PER_MINUTE must be positive")
	}

	if c.CacheTTLSeconds <= 0 {
		return errors.New("CACHE_TTL_SECONDS must be positive")
	}

	return nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "userdesk")
	pass := getEnv("DB_PASSWORD", "userdesk")
	name := getEnv("DB_NAME", "userdesk")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// WithTimeoutFrom bounds a request-scoped context.
func WithTimeoutFrom(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
