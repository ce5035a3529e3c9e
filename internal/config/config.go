package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// AWS / storage configuration
	AWS AWSConfig

	// Pagination configuration
	Pagination PaginationConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AWSConfig holds DynamoDB and S3 settings
type AWSConfig struct {
	Region   string
	Endpoint string // non-empty for local stacks (dynamodb-local, minio)

	UnpublishedTable string
	PublishedTable   string
	LikesTable       string

	ContentBucket string
	PublicBaseURL string // base URL under which bucket objects are served

	MaxImageWidth  int
	MaxImageHeight int
}

// PaginationConfig holds listing defaults
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			Endpoint:         getEnv("AWS_ENDPOINT", ""),
			UnpublishedTable: getEnv("UNPUBLISHED_TABLE", "articles-unpublished"),
			PublishedTable:   getEnv("PUBLISHED_TABLE", "articles-published"),
			LikesTable:       getEnv("LIKES_TABLE", "article-likes"),
			ContentBucket:    getEnv("CONTENT_BUCKET", "project-catalog-content"),
			PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "https://content.projectcatalog.io"),
			MaxImageWidth:    getIntEnv("MAX_IMAGE_WIDTH", 1200),
			MaxImageHeight:   getIntEnv("MAX_IMAGE_HEIGHT", 800),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: getIntEnv("PAGE_SIZE_DEFAULT", 10),
			MaxPageSize:     getIntEnv("PAGE_SIZE_MAX", 50),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AWS.Region == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if c.AWS.UnpublishedTable == "" || c.AWS.PublishedTable == "" {
		return fmt.Errorf("UNPUBLISHED_TABLE and PUBLISHED_TABLE are required")
	}
	if c.AWS.UnpublishedTable == c.AWS.PublishedTable {
		return fmt.Errorf("UNPUBLISHED_TABLE and PUBLISHED_TABLE must differ")
	}
	if c.AWS.ContentBucket == "" {
		return fmt.Errorf("CONTENT_BUCKET is required")
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("invalid pagination bounds")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
