package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	LogLevel     string
	DatabasePath string

	// Optional data files. Empty means "use the built-in defaults".
	RatesPath            string
	CategoryMappingsPath string

	// Secret used by Supabase to sign access tokens (HS256).
	SupabaseJWTSecret   string
	StripeWebhookSecret string

	MaxUploadSizeBytes int64
	ReportCacheTTL     time.Duration

	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", err)
	} else {
		log.Println(".env file loaded successfully.")
	}

	cfg := &AppConfig{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./buxtax.db"),

		RatesPath:            getEnv("RATES_PATH", ""),
		CategoryMappingsPath: getEnv("CATEGORY_MAPPINGS_PATH", ""),

		SupabaseJWTSecret:   getEnv("SUPABASE_JWT_SECRET", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		MaxUploadSizeBytes: getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 10*1024*1024),
		ReportCacheTTL:     getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),

		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.SupabaseJWTSecret == "" {
		log.Println("WARNING: SUPABASE_JWT_SECRET is not set. Authenticated endpoints will reject every request.")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("WARNING: STRIPE_WEBHOOK_SECRET is not set. Stripe webhooks will be rejected.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, RatesPath=%q",
		cfg.Port, cfg.LogLevel, cfg.DatabasePath, cfg.RatesPath)
	return cfg
}

// Validate checks the values that would make the server misbehave at runtime.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	if c.MaxUploadSizeBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE_BYTES must be positive, got %d", c.MaxUploadSizeBytes))
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive"))
	}
	if c.SupabaseJWTSecret != "" && len(c.SupabaseJWTSecret) < 32 {
		errs = append(errs, errors.New("SUPABASE_JWT_SECRET must be at least 32 bytes"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
