package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"profile-editor/models"
)

type Config struct {
	AppEnv        string
	Port          string
	EnvFileLoaded bool

	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	MigrationsPath string

	RedisURL       string
	RedisAddr      string
	RedisPassword  string
	RecordCacheTTL time.Duration

	StorageDriver       string
	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadDir           string
	PublicBaseURL       string
	MaxUploadSize       int64

	JWTSecret string
	OriginURL string

	FieldCommitPolicy  models.CommitPolicy
	PrunePreviousPhoto bool
	RemoteTimeout      time.Duration
}

const (
	StorageCloudinary = "cloudinary"
	StorageLocal      = "local"
)

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	envFileLoaded := godotenv.Load() == nil

	maxUploadSize, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_SIZE"), 10, 64)
	if maxUploadSize == 0 {
		maxUploadSize = 5242880
	}

	policy, err := models.ParseCommitPolicy(os.Getenv("FIELD_COMMIT_POLICY"))
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getDuration("RECORD_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	remoteTimeout, err := getDuration("REMOTE_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	port := getEnv("APP_PORT", getEnv("PORT", "8082"))
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           port,
		EnvFileLoaded:  envFileLoaded,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5454"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "profile_editor"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "database/migration"),

		RedisURL:       os.Getenv("REDIS_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RecordCacheTTL: cacheTTL,

		StorageDriver:       getEnv("STORAGE_DRIVER", StorageLocal),
		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "profile-pictures"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", "http://localhost:"+port+"/uploads"),
		MaxUploadSize:       maxUploadSize,

		JWTSecret: jwtSecret(),
		OriginURL: os.Getenv("ORIGIN_URL"),

		FieldCommitPolicy:  policy,
		PrunePreviousPhoto: getBool("PRUNE_PREVIOUS_PHOTO", false),
		RemoteTimeout:      remoteTimeout,
	}

	if cfg.StorageDriver != StorageLocal && cfg.StorageDriver != StorageCloudinary {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// jwtSecret falls back to a development value outside production only.
func jwtSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	if getEnv("APP_ENV", "development") == "production" {
		return ""
	}
	return "secret"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
