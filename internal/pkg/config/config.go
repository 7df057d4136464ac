package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Transcode TranscodeConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host string
	Port string
}

type StorageConfig struct {
	Endpoint  string // S3 API endpoint, e.g. http://localhost:9000 for MinIO
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // base URL under which published objects are reachable
}

type TranscodeConfig struct {
	TempDir      string
	SegmentSecs  int
	WorkerCount  int
	SweepMaxAge  time.Duration
	SweepEnabled bool
}

func LoadConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "3333"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "vod_pipeline"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "http://localhost:9000"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("STORAGE_BUCKET", "streams"),
			PublicURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),
		},
		Transcode: TranscodeConfig{
			TempDir:      getEnv("TRANSCODE_TEMP_DIR", filepath.Join(os.TempDir(), "vod-pipeline")),
			SegmentSecs:  getEnvAsInt("TRANSCODE_SEGMENT_SECONDS", 6),
			WorkerCount:  getEnvAsInt("TRANSCODE_WORKERS", 2),
			SweepMaxAge:  getEnvAsDuration("TRANSCODE_SWEEP_MAX_AGE", 24*time.Hour),
			SweepEnabled: getEnv("TRANSCODE_SWEEP_ENABLED", "true") == "true",
		},
	}

	if err := os.MkdirAll(cfg.Transcode.TempDir, 0o755); err != nil {
		panic(fmt.Sprintf("could not create transcode temp dir %s: %v", cfg.Transcode.TempDir, err))
	}

	return cfg
}

// DSN builds the postgres connection string for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
