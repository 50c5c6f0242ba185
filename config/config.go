package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ApiURL     string `validate:"omitempty,url"`
	AccessKey  string
	SecretKey  string
	BucketName string `validate:"required"`
	Region     string `validate:"required"`
	MaxRetries int    `validate:"min=0"`

	ArchiveRoot         string
	LogFile             string        `validate:"required"`
	AccessThresholdDays int           `validate:"min=0"`
	UploadConcurrency   int           `validate:"min=1"`
	UploadTimeout       time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	maxRetries, err := getEnvInt("S3_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	threshold, err := getEnvInt("ACCESS_THRESHOLD_DAYS", 1)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("UPLOAD_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	uploadTimeout, err := getEnvDuration("UPLOAD_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	config := &Config{
		ApiURL:     getEnv("API_URL", ""),
		AccessKey:  getEnv("ACCESS_KEY", ""),
		SecretKey:  getEnv("SECRET_KEY", ""),
		BucketName: getEnv("BUCKET_NAME", ""),
		Region:     getEnv("REGION", "us-east-1"),
		MaxRetries: maxRetries,

		ArchiveRoot:         getEnv("ARCHIVE_ROOT", ""),
		LogFile:             getEnv("ARCHIVE_LOG", "archive.log"),
		AccessThresholdDays: threshold,
		UploadConcurrency:   concurrency,
		UploadTimeout:       uploadTimeout,

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return config, nil
}

// Validate checks every field, including the S3 connection settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateLocal checks only the settings needed for runs that never reach S3.
func (c *Config) ValidateLocal() error {
	err := validator.New().StructExcept(c, "ApiURL", "BucketName", "Region", "MaxRetries")
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return d, nil
}
