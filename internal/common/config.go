package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/incidents-tracker/constants"
)

// Config holds all application configuration
type Config struct {
	IncidentsURL string
	Database     DatabaseConfig
	Fetch        FetchConfig
	PDF          PDFConfig
	Parse        ParseConfig
	Log          LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// FetchConfig holds report download configuration
type FetchConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	Backoff      time.Duration
	DownloadPath string
}

// PDFConfig holds text extraction configuration
type PDFConfig struct {
	Method    string // "auto" | "native" | "pdftotext"
	Pdftotext string
	Layout    bool // pdftotext -layout instead of -raw
	MaxPages  int
}

// ParseConfig holds record parser configuration
type ParseConfig struct {
	NoiseSubstrings []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	File  string
	Level string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func LoadConfig() *Config {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	return &Config{
		IncidentsURL: getEnv("INCIDENTS_URL", ""),
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", constants.DriverSQLite),
			DSN:              getEnv("DB_URL", constants.DefaultSQLiteDSN),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Fetch: FetchConfig{
			UserAgent:    getEnv("FETCH_USER_AGENT", constants.DefaultUserAgent),
			Timeout:      getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxRetries:   getEnvAsInt("FETCH_MAX_RETRIES", 3),
			Backoff:      getEnvAsDuration("FETCH_BACKOFF", time.Second),
			DownloadPath: getEnv("DOWNLOAD_PATH", constants.DefaultDownloadPath),
		},
		PDF: PDFConfig{
			Method:    getEnv("PDF_EXTRACTOR", "auto"),
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Layout:    getEnvAsBool("PDF_LAYOUT", false),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		Parse: ParseConfig{
			NoiseSubstrings: getEnvAsList("NOISE_SUBSTRINGS", constants.DefaultNoiseSubstrings),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", constants.DefaultLogFile),
			Level: getEnv("LOG_LEVEL", "info"),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// getEnvAsList splits a comma separated value; blank entries are dropped.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("incidents", c.IncidentsURL, Required, HTTPURL).
		Field("db-driver", c.Database.Driver, OneOf(constants.DriverSQLite, constants.DriverPostgres)).
		Field("db-url", c.Database.DSN, Required).
		Field("extractor", c.PDF.Method, OneOf("auto", "native", "pdftotext")).
		Field("download-path", c.Fetch.DownloadPath, Required).
		Field("log-file", c.Log.File, Required)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
