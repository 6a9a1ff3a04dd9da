package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8000"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`
	CORSOrigin string `env:"CORS_ORIGIN"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	S3     S3Config
	Upload UploadConfig
	Watch  WatchConfig
}

type AuthConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,  required"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY,  default=15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY, default=240h"`
	CookieSecure       bool          `env:"COOKIE_SECURE,        default=true"`
}

type MongoConfig struct {
	URI         string `env:"MONGODB_URI,       default=mongodb://localhost:27017"`
	Database    string `env:"MONGODB_DB,        default=videotube"`
	MaxPoolSize uint64 `env:"MONGODB_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT"`
	Region       string `env:"S3_REGION,         default=us-east-1"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`
	Bucket       string `env:"S3_BUCKET,         default=videotube"`
	PublicURL    string `env:"S3_PUBLIC_URL"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE, default=true"`
}

type UploadConfig struct {
	Dir     string `env:"UPLOAD_DIR,      default=./public/temp"`
	MaxSize string `env:"UPLOAD_MAX_SIZE, default=10M"`
}

type WatchConfig struct {
	Workers     int           `env:"WATCH_WORKERS,      default=4"`
	DedupWindow time.Duration `env:"WATCH_DEDUP_WINDOW, default=30m"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Watch.Workers < 1 {
		return nil, fmt.Errorf("config: WATCH_WORKERS must be at least 1, got %d", cfg.Watch.Workers)
	}
	return &cfg, nil
}
