package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/quicklinkhq/scan-tracker/pkg/config"
)

// Default configuration values.
const (
	defaultServiceName  = "scan-tracker"
	defaultServicePort  = 8094
	defaultVersion      = "0.1.0"
	defaultBaseURL      = "http://localhost:8094"
	defaultBufferSize   = 1000
	defaultFlushThresh  = 200
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "scan_tracker"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"

	defaultGeoEndpoint = "http://ip-api.com/json"

	defaultFlushIntervalS = 1
	defaultGeoTimeoutS    = 3
	defaultLinkCacheTTLM  = 10
)

// Config holds the application configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Geo      GeoConfig      `yaml:"geo"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SCAN_TRACKER_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"         yaml:"debug"`
	// BaseURL is the public origin encoded into generated QR images,
	// e.g. https://qlk.example.com.
	BaseURL        string        `env:"SCAN_TRACKER_BASE_URL" yaml:"base_url"`
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_SCAN_TRACKER_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_SCAN_TRACKER_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_SCAN_TRACKER_USER"     yaml:"user"`
	Password string `env:"POSTGRES_SCAN_TRACKER_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_SCAN_TRACKER_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SCAN_TRACKER_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// GeoConfig holds geolocation provider configuration.
type GeoConfig struct {
	// Endpoint is the lookup-by-address base URL; the source address is
	// appended as a path segment.
	Endpoint string        `env:"GEO_ENDPOINT" yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig holds S3-compatible object storage configuration for QR
// images. Endpoint is optional and supports non-AWS providers.
type StorageConfig struct {
	Bucket          string `env:"QR_STORAGE_BUCKET"     yaml:"bucket"`
	Region          string `env:"QR_STORAGE_REGION"     yaml:"region"`
	Endpoint        string `env:"QR_STORAGE_ENDPOINT"   yaml:"endpoint"`
	AccessKeyID     string `env:"QR_STORAGE_ACCESS_KEY" yaml:"access_key_id"`
	SecretAccessKey string `env:"QR_STORAGE_SECRET_KEY" yaml:"secret_access_key"`
	// PublicURL is the base URL QR image links are built from; defaults
	// to the virtual-hosted AWS form when empty.
	PublicURL string `env:"QR_STORAGE_PUBLIC_URL" yaml:"public_url"`
}

// RedisConfig holds the optional link-lookup cache configuration. The cache
// is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	LinkTTL  time.Duration `yaml:"link_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return pkgconfig.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setGeoDefaults(&cfg.Geo)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.BaseURL == "" {
		svc.BaseURL = defaultBaseURL
	}
	if svc.BufferSize == 0 {
		svc.BufferSize = defaultBufferSize
	}
	if svc.FlushInterval == 0 {
		svc.FlushInterval = defaultFlushIntervalS * time.Second
	}
	if svc.FlushThreshold == 0 {
		svc.FlushThreshold = defaultFlushThresh
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setGeoDefaults(g *GeoConfig) {
	if g.Endpoint == "" {
		g.Endpoint = defaultGeoEndpoint
	}
	if g.Timeout == 0 {
		g.Timeout = defaultGeoTimeoutS * time.Second
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.LinkTTL == 0 {
		r.LinkTTL = defaultLinkCacheTTLM * time.Minute
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := pkgconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := pkgconfig.ValidateRequired("service.base_url", c.Service.BaseURL); err != nil {
		return err
	}
	if err := pkgconfig.ValidateRequired("storage.bucket", c.Storage.Bucket); err != nil {
		return err
	}
	return nil
}
