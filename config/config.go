package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort          string
	GeminiAPIKey        string
	DataDir             string
	LogLevel            string
	SyncIntervalSeconds string
	FlashModel          string
	ProModel            string
	ThinkingBudget      string
}

// GetSyncInterval returns the market sync interval from environment or the
// 120 second default
func (c *Config) GetSyncInterval() time.Duration {
	if c.SyncIntervalSeconds == "" {
		return 120 * time.Second
	}

	seconds, err := strconv.Atoi(c.SyncIntervalSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid SYNC_INTERVAL_SECONDS value: %s, using default 120 seconds", c.SyncIntervalSeconds)
		return 120 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetThinkingBudget returns the optional thinking-budget tuning parameter for
// generation calls, or -1 when unset (provider default)
func (c *Config) GetThinkingBudget() int32 {
	if c.ThinkingBudget == "" {
		return -1
	}

	budget, err := strconv.Atoi(c.ThinkingBudget)
	if err != nil || budget < 0 {
		logrus.Warnf("Invalid THINKING_BUDGET value: %s, ignoring", c.ThinkingBudget)
		return -1
	}

	return int32(budget)
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		DataDir:             getEnv("DATA_DIR", "./data"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SyncIntervalSeconds: getEnv("SYNC_INTERVAL_SECONDS", "120"),
		FlashModel:          getEnv("GEMINI_FLASH_MODEL", "gemini-2.0-flash"),
		ProModel:            getEnv("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		ThinkingBudget:      getEnv("THINKING_BUDGET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
