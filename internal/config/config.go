package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	MediaStatic = "static"
	MediaS3     = "s3"
)

type Config struct {
	Env       string          `json:"env"`
	Http      HttpConfig      `json:"http"`
	Storage   StorageConfig   `json:"storage"`
	Postgres  PostgresConfig  `json:"postgres"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	Dispatch  DispatchConfig  `json:"dispatch"`
	Triage    TriageConfig    `json:"triage"`
	Media     MediaConfig     `json:"media"`
	Notify    NotifyConfig    `json:"notify"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver string `json:"driver"`
	// SeedPath is the YAML driver/facility directory used in memory mode.
	SeedPath string `json:"seed_path"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	QueueKey string `json:"queue_key"`
	GeoKey   string `json:"geo_key"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	Issuer    string        `json:"issuer"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

type DispatchConfig struct {
	FallbackLat      float64       `json:"fallback_lat"`
	FallbackLng      float64       `json:"fallback_lng"`
	DriverRadiusKM   float64       `json:"driver_radius_km"`
	FacilityRadiusKM float64       `json:"facility_radius_km"`
	IncidentRadiusKM float64       `json:"incident_radius_km"`
	CandidateLimit   int           `json:"candidate_limit"`
	ListLimit        int           `json:"list_limit"`
	RetryInterval    time.Duration `json:"retry_interval"`
	RetryBatch       int           `json:"retry_batch"`
	RetryWorkers     int           `json:"retry_workers"`
}

type TriageConfig struct {
	RulesPath string `json:"rules_path"`
}

type MediaConfig struct {
	Backend    string        `json:"backend"`
	BaseURL    string        `json:"base_url"`
	Bucket     string        `json:"bucket"`
	Region     string        `json:"region"`
	Endpoint   string        `json:"endpoint"`
	AccessKey  string        `json:"-"`
	SecretKey  string        `json:"-"`
	PresignTTL time.Duration `json:"presign_ttl"`
}

type NotifyConfig struct {
	WebhookURL      string        `json:"webhook_url"`
	WebhookDisabled bool          `json:"webhook_disabled"`
	NATSURL         string        `json:"nats_url"`
	NATSSubject     string        `json:"nats_subject"`
	SlackWebhookURL string        `json:"-"`
	EnqueueTimeout  time.Duration `json:"enqueue_timeout"`
	MaxRetries      int           `json:"max_retries"`
	QueueSize       int           `json:"queue_size"`
}

type RateLimitConfig struct {
	RPS   float64 `json:"rps"`
	Burst int     `json:"burst"`
}

func Load(ctx context.Context) (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", StorageMemory),
			SeedPath: getEnv("DIRECTORY_SEED_PATH", ""),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "rescue_dispatch"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			QueueKey: getEnv("REDIS_NOTIFICATION_QUEUE", "dispatch:notifications"),
			GeoKey:   getEnv("REDIS_DRIVER_GEO_KEY", "dispatch:drivers:geo"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "rescue-dispatch"),
			TokenTTL:  getEnvDuration("JWT_TTL", 12*time.Hour),
		},
		Dispatch: DispatchConfig{
			FallbackLat:      getEnvFloat("DISPATCH_FALLBACK_LAT", 6.9271),
			FallbackLng:      getEnvFloat("DISPATCH_FALLBACK_LNG", 79.8612),
			DriverRadiusKM:   getEnvFloat("DISPATCH_DRIVER_RADIUS_KM", 20),
			FacilityRadiusKM: getEnvFloat("DISPATCH_FACILITY_RADIUS_KM", 50),
			IncidentRadiusKM: getEnvFloat("DISPATCH_INCIDENT_RADIUS_KM", 50),
			CandidateLimit:   getEnvInt("DISPATCH_CANDIDATE_LIMIT", 5),
			ListLimit:        getEnvInt("DISPATCH_LIST_LIMIT", 20),
			RetryInterval:    getEnvDuration("DISPATCH_RETRY_INTERVAL", 0),
			RetryBatch:       getEnvInt("DISPATCH_RETRY_BATCH", 50),
			RetryWorkers:     getEnvInt("DISPATCH_RETRY_WORKERS", 4),
		},
		Triage: TriageConfig{
			RulesPath: getEnv("TRIAGE_RULES_PATH", ""),
		},
		Media: MediaConfig{
			Backend:    getEnv("MEDIA_BACKEND", MediaStatic),
			BaseURL:    getEnv("MEDIA_BASE_URL", "http://localhost:8080/media"),
			Bucket:     getEnv("MEDIA_S3_BUCKET", ""),
			Region:     getEnv("MEDIA_S3_REGION", "ap-south-1"),
			Endpoint:   getEnv("MEDIA_S3_ENDPOINT", ""),
			AccessKey:  getEnv("MEDIA_S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("MEDIA_S3_SECRET_KEY", ""),
			PresignTTL: getEnvDuration("MEDIA_PRESIGN_TTL", 15*time.Minute),
		},
		Notify: NotifyConfig{
			WebhookURL:      getEnv("WEBHOOK_URL", ""),
			WebhookDisabled: getEnvBool("WEBHOOK_DISABLED", false),
			NATSURL:         getEnv("NATS_URL", ""),
			NATSSubject:     getEnv("NATS_SUBJECT", "dispatch.notifications"),
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			EnqueueTimeout:  getEnvDuration("NOTIFY_ENQUEUE_TIMEOUT", 2*time.Second),
			MaxRetries:      getEnvInt("NOTIFY_MAX_RETRIES", 3),
			QueueSize:       getEnvInt("NOTIFY_QUEUE_SIZE", 1024),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("redis", cfg.Redis.Enabled),
		slog.String("media", cfg.Media.Backend),
		slog.Duration("dispatch_retry", cfg.Dispatch.RetryInterval))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || (len(c.Http.Port) > 0 && c.Http.Port[0] != ':') {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST required")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageMemory, StoragePostgres)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET required (at least 16 bytes)")
	}

	if c.Dispatch.FallbackLat < -90 || c.Dispatch.FallbackLat > 90 ||
		c.Dispatch.FallbackLng < -180 || c.Dispatch.FallbackLng > 180 {
		return errors.New("DISPATCH_FALLBACK_LAT/LNG out of range")
	}
	if c.Dispatch.DriverRadiusKM <= 0 || c.Dispatch.FacilityRadiusKM <= 0 || c.Dispatch.IncidentRadiusKM <= 0 {
		return errors.New("dispatch radii must be positive")
	}

	switch c.Media.Backend {
	case MediaStatic:
	case MediaS3:
		if c.Media.Bucket == "" {
			return errors.New("MEDIA_S3_BUCKET required for s3 media backend")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q", MediaStatic, MediaS3)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
