package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"storefront/internal/domain"
)

type Config struct {
	HTTPPort        string
	DBPath          string
	AdminSecret     string
	RedisAddr       string
	KafkaBrokers    []string
	SeedPath        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Env             string
}

// Load reads .env and the environment. Redis and Kafka stay off unless their
// addresses are set; the storefront runs fully local by default.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env variables")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "storefront.db"),
		AdminSecret:     getEnv("ADMIN_SECRET", "toutouadmin"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		SeedPath:        getEnv("SEED_PATH", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Env:             getEnv("ENV", "development"),
	}
}

// LoadSeed reads the configured seed catalog. An unset path means the
// built-in default seed.
func (c *Config) LoadSeed() ([]domain.Product, error) {
	if c.SeedPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return products, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
