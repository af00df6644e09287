package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds metadata store connection settings.
// Driver selects the backend: "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	SQLitePath         string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig selects the blob store backend: "minio" (default) or "s3".
type StorageConfig struct {
	Driver string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Config holds settings for native AWS S3. Empty keys fall back to the
// default AWS credential chain.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// AuthConfig holds session token verification settings.
type AuthConfig struct {
	JWTSecret   string
	JWTAudience string
}

// UploadConfig holds the preconditions enforced before a file reaches the catalog.
type UploadConfig struct {
	MaxUploadMB  int64
	AllowedTypes []string
}

// LogConfig controls the process logger.
type LogConfig struct {
	Env   string
	Level string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	S3       S3Config
	Auth     AuthConfig
	Upload   UploadConfig
	Log      LogConfig
}

// DefaultAllowedTypes are the book MIME types accepted for upload.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"application/epub+zip",
	"application/x-mobipocket-ebook",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Driver:             strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			SQLitePath:         getEnv("DB_SQLITE_PATH", "bookshelf.db"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "books"),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    getEnvBool("AWS_S3_USE_PATH_STYLE", false),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
			JWTAudience: getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		},
		Upload: UploadConfig{
			MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 100)),
			AllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", DefaultAllowedTypes),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "development"),
			Level: getEnv("LOG_LEVEL", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
