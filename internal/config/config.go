package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the portal API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	CDN      CDNConfig
	Upload   UploadConfig
	Events   EventsConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries object store connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// AuthConfig groups session authentication settings.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
	BcryptCost    int
}

// CDNConfig locates the content delivery origin assets are served from.
type CDNConfig struct {
	BaseURL string
}

// UploadConfig bounds per-slot upload sizes.
type UploadConfig struct {
	MaxIconBytes      int64
	MaxThumbnailBytes int64
	MaxPreviewBytes   int64
	MaxArchiveBytes   int64
}

// EventsConfig configures the asset-change event publisher. Publishing is
// disabled when Brokers is empty.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig selects logger verbosity and output encoding.
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("PORTAL_API_HOST", "0.0.0.0"),
			Port:         getInt("PORTAL_API_PORT", 8080),
			ReadTimeout:  getDuration("PORTAL_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("PORTAL_API_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getDuration("PORTAL_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "portal_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "portal"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "portal"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "portal-assets"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Auth: loadAuthConfig(),
		CDN: CDNConfig{
			BaseURL: strings.TrimSuffix(getString("PORTAL_CDN_BASE_URL", "https://cdn.localhost"), "/"),
		},
		Upload: UploadConfig{
			MaxIconBytes:      getInt64("PORTAL_MAX_ICON_BYTES", 1<<20),
			MaxThumbnailBytes: getInt64("PORTAL_MAX_THUMBNAIL_BYTES", 5<<20),
			MaxPreviewBytes:   getInt64("PORTAL_MAX_PREVIEW_BYTES", 20<<20),
			MaxArchiveBytes:   getInt64("PORTAL_MAX_ARCHIVE_BYTES", 100<<20),
		},
		Events: EventsConfig{
			Brokers: splitList(getString("KAFKA_BROKERS", "")),
			Topic:   getString("KAFKA_ASSET_TOPIC", "portal.assets.changed"),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("PORTAL_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:  getString("PORTAL_LOG_LEVEL", "info"),
			Format: getString("PORTAL_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadAuthConfig() AuthConfig {
	cost := getInt("PORTAL_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		SessionSecret: getString("PORTAL_SESSION_SECRET", "change-me-to-a-32-byte-secret"),
		SessionTTL:    getDuration("PORTAL_SESSION_TTL", 24*time.Hour),
		CookieName:    getString("PORTAL_SESSION_COOKIE", "portal_session"),
		CookieSecure:  getBool("PORTAL_SESSION_COOKIE_SECURE", false),
		BcryptCost:    cost,
	}
}
