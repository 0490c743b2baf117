package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// CategoryDeleteRestrict refuses to delete a category that still has meals
	CategoryDeleteRestrict = "restrict"
	// CategoryDeleteCascade deletes the category's meals and the cart lines pointing at them
	CategoryDeleteCascade = "cascade"

	// ProviderDeleteRestrict refuses to delete a provider with meals or pending orders
	ProviderDeleteRestrict = "restrict"
	// ProviderDeleteUnguarded removes the profile unconditionally
	ProviderDeleteUnguarded = "unguarded"
)

type Config struct {
	Port    string
	GinMode string
	Env     string

	DBDriver string
	DBSource string

	JWTSecret []byte
	TokenTTL  time.Duration

	LogLevel string

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigins []string

	CategoryDeletePolicy string
	ProviderDeletePolicy string

	PublicBaseURL string
	ServiceName   string
}

// Load reads configuration from the environment, after an optional .env file
func Load() (Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		GinMode:              os.Getenv("GIN_MODE"),
		Env:                  getEnv("APP_ENV", "development"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBSource:             getEnv("DB_SOURCE", "foodhub.db"),
		JWTSecret:            []byte(getEnv("JWT_SECRET", "foodhub_dev_secret_change_me")),
		TokenTTL:             ttl,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		KafkaBrokers:         splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "foodhub.orders"),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "*")),
		CategoryDeletePolicy: strings.ToLower(getEnv("CATEGORY_DELETE_POLICY", CategoryDeleteRestrict)),
		ProviderDeletePolicy: strings.ToLower(getEnv("PROVIDER_DELETE_POLICY", ProviderDeleteRestrict)),
		PublicBaseURL:        strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		ServiceName:          getEnv("SERVICE_NAME", "foodhub-api"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.CategoryDeletePolicy {
	case CategoryDeleteRestrict, CategoryDeleteCascade:
	default:
		return fmt.Errorf("CATEGORY_DELETE_POLICY must be restrict or cascade, got %q", c.CategoryDeletePolicy)
	}
	switch c.ProviderDeletePolicy {
	case ProviderDeleteRestrict, ProviderDeleteUnguarded:
	default:
		return fmt.Errorf("PROVIDER_DELETE_POLICY must be restrict or unguarded, got %q", c.ProviderDeletePolicy)
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
