package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// RateCacheTTL is THE staleness bound for cached exchange rates. The
	// write path and the rates endpoint both read it; there is deliberately
	// no second knob.
	RateCacheTTL time.Duration
	// RateProviderTimeout bounds each upstream rate fetch.
	RateProviderTimeout time.Duration
	// RatesRateLimit is the ulule/limiter formatted limit ("30-M") applied
	// to the rates endpoint.
	RatesRateLimit string
	// ReceiptMaxRetries bounds the sequencer conflict retry loop.
	ReceiptMaxRetries int

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist.
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_CACHE_TTL", "10m")
	viper.SetDefault("RATE_PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("RATES_RATE_LIMIT", "30-M")
	viper.SetDefault("RECEIPT_MAX_RETRIES", 5)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.RateCacheTTL = parseDurationOr("RATE_CACHE_TTL", 10*time.Minute)
	cfg.RateProviderTimeout = parseDurationOr("RATE_PROVIDER_TIMEOUT", 10*time.Second)

	cfg.RatesRateLimit = viper.GetString("RATES_RATE_LIMIT")

	cfg.ReceiptMaxRetries = viper.GetInt("RECEIPT_MAX_RETRIES")
	if cfg.ReceiptMaxRetries < 1 {
		cfg.ReceiptMaxRetries = 5
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
