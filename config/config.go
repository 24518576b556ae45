// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime settings.
type Config struct {
	Port   int
	DBPath string

	LogLevel    string
	LogFilePath string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win because
// godotenv never overrides them.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              getEnvInt("PORT", 8080),
		DBPath:            getEnvString("DB_PATH", "./data/school.db"),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		LogFilePath:       getEnvString("LOG_FILE_PATH", ""),
		SchedulerEnabled:  getEnvBool("PAYROLL_SCHEDULER_ENABLED", true),
		SchedulerInterval: getEnvDuration("PAYROLL_SCHEDULER_INTERVAL", time.Hour),
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
