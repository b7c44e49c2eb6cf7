package common

import (
	"os"
	"strconv"
	"time"

	"github.com/avollmer/invoice-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	NER      NERConfig
	Batch    BatchConfig
}

// DatabaseConfig holds database-related configuration. An empty DSN means
// the process runs without persistence (in-memory results only).
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// NERConfig holds entity-recognizer configuration. An empty endpoint means
// the recognizer is unavailable and extraction runs in pattern-only mode.
type NERConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// BatchConfig holds quota and admission configuration
type BatchConfig struct {
	DailyQuota    int
	MaxFileSizeMB int
	TablePath     string // optional JSON override for pattern/label tables
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:      getEnv("OCR_LANG", "deu"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		NER: NERConfig{
			Endpoint: getEnv("NER_ENDPOINT", ""),
			Timeout:  getEnvAsDuration("NER_TIMEOUT", 60*time.Second),
		},
		Batch: BatchConfig{
			DailyQuota:    getEnvAsInt("QUOTA_DAILY_LIMIT", constants.DefaultDailyQuota),
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", constants.DefaultMaxFileSizeMB),
			TablePath:     getEnv("FIELD_TABLE_PATH", ""),
		},
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
	if c.Batch.DailyQuota <= 0 {
		return NewAppError("CONFIG_ERROR", "QUOTA_DAILY_LIMIT must be positive", ErrInvalidInput)
	}
	if c.Batch.MaxFileSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
