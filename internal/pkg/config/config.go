package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	// PathBase is the prefix the API is mounted under behind a proxy.
	PathBase     string `env:"PATH_BASE"`
	WriteWorkers int    `env:"WRITE_WORKERS, default=8"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=peliculas"`
}

// RedisConfig: an empty REDIS_ADDR disables the distributed bootstrap lock.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND, default=local"`
	Root    string `env:"STORAGE_ROOT,    default=wwwroot/ImagenesPeliculas"`

	S3Region     string `env:"S3_REGION,     default=us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	S3AccessKey  string `env:"S3_ACCESS_KEY"`
	S3SecretKey  string `env:"S3_SECRET_KEY"`
	S3Bucket     string `env:"S3_BUCKET,     default=peliculas"`
	S3Prefix     string `env:"S3_PREFIX,     default=ImagenesPeliculas"`
	S3DisableSSL bool   `env:"S3_DISABLE_SSL, default=false"`
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Storage.Backend != "local" && cfg.Storage.Backend != "s3" {
		return nil, fmt.Errorf("config: STORAGE_BACKEND must be local or s3, got %q", cfg.Storage.Backend)
	}
	return &cfg, nil
}

// MustLoad is Load that panics, for use from main.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
