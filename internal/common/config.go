package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	PeopleDB   DatabaseConfig
	ReceiptsDB DatabaseConfig
	Server     ServerConfig
	FX         FXConfig
	Recognizer RecognizerConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr string
}

// FXConfig holds exchange-rate lookup configuration
type FXConfig struct {
	BaseURL      string
	HomeCurrency string
	MaxBackDays  int
	Timeout      time.Duration
}

// RecognizerConfig holds vision-model configuration
type RecognizerConfig struct {
	Model   string
	APIKey  string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		PeopleDB:   loadDatabaseConfig("PEOPLE_DB_URL"),
		ReceiptsDB: loadDatabaseConfig("RECEIPTS_DB_URL"),
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		FX: FXConfig{
			BaseURL:      getEnv("FX_BASE_URL", "https://www.bankofcanada.ca/valet"),
			HomeCurrency: getEnv("HOME_CURRENCY", "CAD"),
			MaxBackDays:  getEnvAsInt("FX_MAX_BACK_DAYS", 365),
			Timeout:      getEnvAsDuration("FX_TIMEOUT", 10*time.Second),
		},
		Recognizer: RecognizerConfig{
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
	}
}

func loadDatabaseConfig(dsnKey string) DatabaseConfig {
	return DatabaseConfig{
		DSN:             getEnv(dsnKey, ""),
		MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
		MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
		MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.PeopleDB.DSN == "" {
		return NewAppError("CONFIG_ERROR", "PEOPLE_DB_URL is required", ErrValidation)
	}
	if c.ReceiptsDB.DSN == "" {
		return NewAppError("CONFIG_ERROR", "RECEIPTS_DB_URL is required", ErrValidation)
	}
	if c.Recognizer.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrValidation)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrValidation)
	}
	return nil
}
