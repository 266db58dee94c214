package config

import (
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assertStringEqual(t, "service.name", defaultServiceName, cfg.Service.Name)
	assertStringEqual(t, "service.version", defaultVersion, cfg.Service.Version)
	assertIntEqual(t, "service.port", defaultServicePort, cfg.Service.Port)
	assertStringEqual(t, "service.base_url", defaultBaseURL, cfg.Service.BaseURL)
	assertIntEqual(t, "service.buffer_size", defaultBufferSize, cfg.Service.BufferSize)
	assertIntEqual(t, "service.flush_threshold", defaultFlushThresh, cfg.Service.FlushThreshold)

	expectedFlushInterval := defaultFlushIntervalS * time.Second
	if cfg.Service.FlushInterval != expectedFlushInterval {
		t.Errorf("service.flush_interval: got %v, want %v",
			cfg.Service.FlushInterval, expectedFlushInterval)
	}

	assertStringEqual(t, "database.host", defaultDBHost, cfg.Database.Host)
	assertIntEqual(t, "database.port", defaultDBPort, cfg.Database.Port)
	assertStringEqual(t, "database.user", defaultDBUser, cfg.Database.User)
	assertStringEqual(t, "database.database", defaultDBName, cfg.Database.Database)
	assertStringEqual(t, "database.sslmode", defaultDBSSLMode, cfg.Database.SSLMode)

	assertStringEqual(t, "geo.endpoint", defaultGeoEndpoint, cfg.Geo.Endpoint)
	expectedGeoTimeout := defaultGeoTimeoutS * time.Second
	if cfg.Geo.Timeout != expectedGeoTimeout {
		t.Errorf("geo.timeout: got %v, want %v", cfg.Geo.Timeout, expectedGeoTimeout)
	}

	expectedTTL := defaultLinkCacheTTLM * time.Minute
	if cfg.Redis.LinkTTL != expectedTTL {
		t.Errorf("redis.link_ttl: got %v, want %v", cfg.Redis.LinkTTL, expectedTTL)
	}

	assertStringEqual(t, "logging.level", defaultLoggingLevel, cfg.Logging.Level)
	assertStringEqual(t, "logging.format", defaultLoggingFmt, cfg.Logging.Format)
}

func TestValidate_MissingBucket(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Storage.Bucket = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing storage bucket, got nil")
	}

	expected := "storage.bucket: is required"
	if err.Error() != expected {
		t.Errorf("error message: got %q, want %q", err.Error(), expected)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Storage.Bucket = "qr-images"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no validation error, got: %v", err)
	}
}

func TestDSN(t *testing.T) {
	db := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "scan_tracker",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=postgres password=secret dbname=scan_tracker sslmode=disable"
	if got := db.DSN(); got != expected {
		t.Errorf("DSN:\ngot:  %q\nwant: %q", got, expected)
	}
}

// assertStringEqual is a test helper that checks string equality.
func assertStringEqual(t *testing.T, field, want, got string) {
	t.Helper()

	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}

// assertIntEqual is a test helper that checks int equality.
func assertIntEqual(t *testing.T, field string, want, got int) {
	t.Helper()

	if got != want {
		t.Errorf("%s: got %d, want %d", field, got, want)
	}
}
