package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port          string
	Env           string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisPoolSize int
	JWTSecret     string
	ClassifierURL string
	// MinConfidence below which voice commands fall back to chat.
	MinConfidence float64
	// SeedBalance is credited to every account at signup.
	SeedBalance decimal.Decimal
	// LockWait bounds how long a transfer waits for account locks.
	LockWait time.Duration
	OTPTTL   time.Duration
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize: getInt("REDIS_POOL_SIZE", 10),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		ClassifierURL: getEnv("CLASSIFIER_URL", "http://localhost:5002"),
		MinConfidence: getFloat("MIN_CONFIDENCE", 0.75),
		SeedBalance:   getDecimal("SEED_BALANCE", "5000.00"),
		LockWait:      getDuration("LOCK_WAIT", 2*time.Second),
		OTPTTL:        getDuration("OTP_TTL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using fallback", "key", key)
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("invalid float in environment, using fallback", "key", key)
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("invalid decimal in environment, using fallback", "key", key)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration in environment, using fallback", "key", key)
	}
	return fallback
}
