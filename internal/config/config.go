package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the kaizen service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"kaizen-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"KAIZEN_API_PORT" envDefault:"8080"`
	LogLevel        string        `env:"KAIZEN_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (embedded SQLite file)
	DBPath         string `env:"KAIZEN_DB_PATH" envDefault:"./data"`
	SeedSampleData bool   `env:"KAIZEN_SEED_SAMPLE_DATA" envDefault:"false"`

	// Machine-to-machine authentication. When empty the API-key guard
	// reports a server configuration error instead of rejecting the client.
	APIKey string `env:"API_KEY"`

	// CORS
	AllowedOrigins []string `env:"KAIZEN_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080"`

	// Attachment Storage Backend Selection
	StorageBackend string `env:"ATTACHMENT_STORAGE_BACKEND" envDefault:"graph"` // Options: "graph", "s3" or "local"

	// Microsoft Graph (SharePoint drive) Configuration
	AzureClientID     string `env:"AZURE_CLIENT_ID"`
	AzureClientSecret string `env:"AZURE_CLIENT_SECRET"`
	AzureTenantID     string `env:"AZURE_TENANT_ID" envDefault:"common"`
	GraphSiteHost     string `env:"GRAPH_SITE_HOST" envDefault:"volvogroup.sharepoint.com"`
	GraphSitePath     string `env:"GRAPH_SITE_PATH" envDefault:"/sites/unit-wmit"`
	GraphRootFolder   string `env:"GRAPH_ROOT_FOLDER" envDefault:"Kaizen files"`

	// S3 Storage Configuration
	S3Endpoint     string        `env:"ATTACH_S3_ENDPOINT"`
	S3Region       string        `env:"ATTACH_S3_REGION" envDefault:"eu-north-1"`
	S3Bucket       string        `env:"ATTACH_S3_BUCKET"`
	S3AccessKeyID  string        `env:"ATTACH_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"ATTACH_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"ATTACH_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL   time.Duration `env:"ATTACH_S3_PRESIGN_TTL" envDefault:"720h"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"ATTACH_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"ATTACH_LOCAL_STORAGE_BASE_URL"`

	// Attachment Configuration
	MaxAttachmentBytes int64         `env:"ATTACHMENT_MAX_BYTES" envDefault:"10485760"`
	StorageTimeout     time.Duration `env:"ATTACHMENT_STORAGE_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.AzureClientID = strings.TrimSpace(cfg.AzureClientID)
	cfg.AzureClientSecret = strings.TrimSpace(cfg.AzureClientSecret)
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = 10 * 1024 * 1024
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("KAIZEN_DB_PATH must not be empty")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// DatabaseFile returns the path of the SQLite store inside DBPath.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DBPath, "kaizens.db")
}

// IsLocalStorage returns true if the local filesystem backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if the S3 backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "s3"
}

// IsGraphStorage returns true if the Microsoft Graph backend is configured.
func (c *Config) IsGraphStorage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "graph"
}
