package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverMinio      = "minio"
	StorageDriverFilesystem = "filesystem"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	MigrationsPath string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	GeminiMaxAttempts int

	StorageDriver    string
	StoragePublicURL string
	StoragePath      string
	UploadFolder     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	CORSAllowedOrigins []string
	GenerateRateLimit  int
	ModifyRateLimit    int
	RateLimitWindow    time.Duration

	MaxUploadBytes int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp-image-generation"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiMaxAttempts: getEnvInt("GEMINI_MAX_ATTEMPTS", 1),

		StorageDriver:    getEnv("STORAGE_DRIVER", StorageDriverFilesystem),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/static"),
		StoragePath:      getEnv("STORAGE_PATH", "data/objects"),
		UploadFolder:     getEnv("UPLOAD_FOLDER", "ai-image-studio"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "media"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200")),
		GenerateRateLimit:  getEnvInt("GENERATE_RATE_LIMIT", 10),
		ModifyRateLimit:    getEnvInt("MODIFY_RATE_LIMIT", 15),
		RateLimitWindow:    time.Minute * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StorageDriver {
	case StorageDriverFilesystem:
	case StorageDriverMinio:
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio storage driver")
		}
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver")
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.GeminiMaxAttempts < 1 {
		cfg.GeminiMaxAttempts = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
