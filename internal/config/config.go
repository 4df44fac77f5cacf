package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	FileStoreDisk  = "disk"
	FileStoreMinio = "minio"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PublicBaseURL string
	AppEnv        string
	LogLevel      string

	StoreDriver   string
	MongoURI      string
	MongoDB       string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenSecret string
	TokenTTL    time.Duration

	FileStore      string
	UploadDir      string
	MaxUploadBytes int64
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AllowedOrigins []string
}

// Load reads the environment, seeding it from a .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	port := getenv("PORT", "4000")
	return &Config{
		Port:            port,
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		AppEnv:          getenv("APP_ENV", "dev"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoURI:        getenv("MONGO_URI", ""),
		MongoDB:         getenv("MONGO_DB", "ecommerce"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         int(getenvInt64("REDIS_DB", 0)),
		TokenSecret:     getenv("TOKEN_SECRET", ""),
		TokenTTL:        getenvDuration("TOKEN_TTL", 0),
		FileStore:       strings.ToLower(getenv("FILE_STORE", FileStoreDisk)),
		UploadDir:       getenv("UPLOAD_DIR", "./upload/images"),
		MaxUploadBytes:  getenvInt64("MAX_UPLOAD_BYTES", 1000000),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "product-images"),
		MinioUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		AllowedOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Validate reports the first setting that would prevent the server from starting.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.RedisDB < 0 {
		return errors.New("REDIS_DB must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.FileStore {
	case FileStoreDisk:
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for the disk file store")
		}
	case FileStoreMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio file store")
		}
	default:
		return fmt.Errorf("unknown FILE_STORE %q", c.FileStore)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
