// Package config loads runtime settings from a .env file and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"bet-ledger-lab/internal/risk"
)

// Config holds application configuration
type Config struct {
	// Storage
	PostgresDSN   string
	ClickhouseDSN string

	// Redis export sink
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Reporting
	Currency string
	Risk     risk.Config

	// HTTP
	ListenAddr  string
	MetricsAddr string
	CORSOrigins []string
}

// Load reads the given .env files (default ".env") if present, then builds
// the configuration from environment variables. Variables already set in the
// environment take precedence over .env values.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	defaults := risk.DefaultConfig()

	return &Config{
		PostgresDSN:   os.Getenv("BDASH_POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("BDASH_CLICKHOUSE_DSN"),

		RedisAddr:     getEnvOrDefault("BDASH_REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("BDASH_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("BDASH_REDIS_DB", 0),

		Currency: strings.ToUpper(getEnvOrDefault("BDASH_CURRENCY", "AUD")),
		Risk: risk.Config{
			Short: risk.Window{
				Length: getEnvInt("BDASH_WINDOW_SHORT", defaults.Short.Length),
				MinObs: getEnvInt("BDASH_WINDOW_SHORT_MIN", defaults.Short.MinObs),
			},
			Medium: risk.Window{
				Length: getEnvInt("BDASH_WINDOW_MEDIUM", defaults.Medium.Length),
				MinObs: getEnvInt("BDASH_WINDOW_MEDIUM_MIN", defaults.Medium.MinObs),
			},
			Long: risk.Window{
				Length: getEnvInt("BDASH_WINDOW_LONG", defaults.Long.Length),
				MinObs: getEnvInt("BDASH_WINDOW_LONG_MIN", defaults.Long.MinObs),
			},
			WorstDays: getEnvInt("BDASH_WORST_DAYS", defaults.WorstDays),
		},

		ListenAddr:  getEnvOrDefault("BDASH_LISTEN_ADDR", ":8080"),
		MetricsAddr: getEnvOrDefault("BDASH_METRICS_ADDR", ""),
		CORSOrigins: splitList(getEnvOrDefault("BDASH_CORS_ORIGINS", "*")),
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
