package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Import     ImportConfig     `yaml:"import"`
	Audit      AuditConfig      `yaml:"audit"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	MaxUploadMB     int64   `yaml:"max_upload_mb"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres | sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// StorageConfig selects the blob backend for floor plans and logos.
type StorageConfig struct {
	Driver string   `yaml:"driver"` // fs | s3 | memory
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds the S3 / MinIO parameters.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`     // optional, default credential chain otherwise
	SecretAccessKey string `yaml:"secret_access_key"` // optional
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PricingConfig controls how long an uncommitted price preview is kept.
type PricingConfig struct {
	PreviewTTLSeconds int           `yaml:"preview_ttl_seconds"`
	PreviewTTL        time.Duration `yaml:"-"`
}

// ImportConfig controls how long a parsed upload waits for its column mapping.
type ImportConfig struct {
	UploadTTLSeconds int           `yaml:"upload_ttl_seconds"`
	UploadTTL        time.Duration `yaml:"-"`
}

// AuditConfig caps the system log.
type AuditConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills every unset field with its default value.
func (cfg *Config) SetDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "inventory.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "fs"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "./blobdata"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Pricing.PreviewTTLSeconds <= 0 {
		cfg.Pricing.PreviewTTLSeconds = 900
	}
	cfg.Pricing.PreviewTTL = time.Duration(cfg.Pricing.PreviewTTLSeconds) * time.Second

	if cfg.Import.UploadTTLSeconds <= 0 {
		cfg.Import.UploadTTLSeconds = 1800
	}
	cfg.Import.UploadTTL = time.Duration(cfg.Import.UploadTTLSeconds) * time.Second

	if cfg.Audit.MaxEntries <= 0 {
		cfg.Audit.MaxEntries = 1000
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("INVENTORY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("INVENTORY_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("INVENTORY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("ignoring INVENTORY_PORT=%q: %v", v, err)
		}
	}
}
