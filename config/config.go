// Package config loads server and tool configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/repository"
	"sbc-validator-backend/storage"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	PDF       PDFConfig
	Penalty   PenaltyConfig
	MetricsNS string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	CORSOrigins    []string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	URL        string
	SQLitePath string
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	Type         string
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
	KeyPrefix    string
	PresignTTL   time.Duration
}

// PDFConfig configures the pdftotext runner
type PDFConfig struct {
	Binary  string
	Timeout time.Duration
}

// PenaltyConfig holds the figures quoted in explanations
type PenaltyConfig struct {
	Year                  int
	PerEmployeeA          int
	PerEmployeeB          int
	IllustrativeHeadcount int
	UnknownAsNegative     bool
}

const defaultMaxUploadBytes = 10 << 20

var defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Load reads configuration from environment variables
func Load() *Config {
	defaults := extraction.DefaultExplanationConfig()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", defaultCORSOrigins),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			SQLitePath: getEnv("SQLITE_PATH", repository.DefaultSQLitePath),
		},
		Storage: StorageConfig{
			Type:         getEnv("STORAGE_TYPE", string(storage.StorageTypeLocal)),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./storage/files"),
			S3Bucket:     getEnv("AWS_S3_BUCKET", getEnv("S3_BUCKET_NAME", "")),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			KeyPrefix:    getEnv("S3_KEY_PREFIX", storage.DefaultKeyPrefix),
			PresignTTL:   getEnvAsDuration("PRESIGN_TTL", time.Hour),
		},
		PDF: PDFConfig{
			Binary:  getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Timeout: getEnvAsDuration("PDFTOTEXT_TIMEOUT", 30*time.Second),
		},
		Penalty: PenaltyConfig{
			Year:                  getEnvAsInt("PENALTY_YEAR", defaults.PenaltyYear),
			PerEmployeeA:          getEnvAsInt("PENALTY_A_PER_EMPLOYEE", defaults.NoCoveragePenaltyPerEmployee),
			PerEmployeeB:          getEnvAsInt("PENALTY_B_PER_EMPLOYEE", defaults.InadequateCoveragePenaltyPerEmployee),
			IllustrativeHeadcount: getEnvAsInt("ILLUSTRATIVE_HEADCOUNT", defaults.IllustrativeHeadcount),
			UnknownAsNegative:     getEnvAsBool("EXPLAIN_UNKNOWN_AS_NEGATIVE", false),
		},
		MetricsNS: getEnv("METRICS_NAMESPACE", "sbc"),
	}
}

// Validate reports the first configuration problem found
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	switch storage.StorageType(c.Storage.Type) {
	case storage.StorageTypeLocal:
	case storage.StorageTypeS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Database.URL != "" && !repository.IsPostgresURL(c.Database.URL) {
		return errors.New("DATABASE_URL must be a postgres:// URL")
	}
	return nil
}

func (c *Config) StorageConfig() storage.StorageConfig {
	return storage.StorageConfig{
		Type:         storage.StorageType(c.Storage.Type),
		KeyPrefix:    c.Storage.KeyPrefix,
		LocalPath:    c.Storage.LocalPath,
		S3Bucket:     c.Storage.S3Bucket,
		S3Region:     c.Storage.S3Region,
		AWSAccessKey: c.Storage.AWSAccessKey,
		AWSSecretKey: c.Storage.AWSSecretKey,
	}
}

func (c *Config) StoreConfig() repository.StoreConfig {
	return repository.StoreConfig{
		DatabaseURL: c.Database.URL,
		SQLitePath:  c.Database.SQLitePath,
	}
}

func (c *Config) ExplanationConfig() extraction.ExplanationConfig {
	return extraction.ExplanationConfig{
		PenaltyYear:                          c.Penalty.Year,
		NoCoveragePenaltyPerEmployee:         c.Penalty.PerEmployeeA,
		InadequateCoveragePenaltyPerEmployee: c.Penalty.PerEmployeeB,
		IllustrativeHeadcount:                c.Penalty.IllustrativeHeadcount,
		UnknownAsNegative:                    c.Penalty.UnknownAsNegative,
	}
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// getEnvAsList splits a comma separated value, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
