package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDriver  string
	UploadDir      string
	CertificateDir string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryUploadFolder string

	MaxLessonFileBytes int64
	MaxPhotoBytes      int64

	CertificateLockTTL time.Duration
	AnalyticsCacheTTL  time.Duration
	LoginLockout       time.Duration
	LoginMaxAttempts   int

	SeedAdminEmail    string
	SeedAdminPassword string

	ReindexSchedule      string
	MediaCleanupSchedule string
}

func Load() (*Config, error) {
	// .env is optional; production injects real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "4000"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "elearning"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		CertificateDir: getEnv("CERTIFICATE_DIR", "public/certificates"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "elearning"),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),

		ReindexSchedule:      getEnv("REINDEX_SCHEDULE", "@daily"),
		MediaCleanupSchedule: getEnv("MEDIA_CLEANUP_SCHEDULE", "@every 12h"),
	}

	if cfg.StorageDriver != "local" && cfg.StorageDriver != "cloudinary" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected local or cloudinary", cfg.StorageDriver)
	}

	ttlMinutes, err := getInt("JWT_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	lessonMB, err := getInt("MAX_LESSON_FILE_MB", 500)
	if err != nil {
		return nil, err
	}
	cfg.MaxLessonFileBytes = int64(lessonMB) << 20

	photoMB, err := getInt("MAX_PHOTO_MB", 2)
	if err != nil {
		return nil, err
	}
	cfg.MaxPhotoBytes = int64(photoMB) << 20

	cfg.LoginMaxAttempts, err = getInt("LOGIN_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	cfg.CertificateLockTTL, err = time.ParseDuration(getEnv("CERTIFICATE_LOCK_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CERTIFICATE_LOCK_TTL: %w", err)
	}
	cfg.AnalyticsCacheTTL, err = time.ParseDuration(getEnv("ANALYTICS_CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_CACHE_TTL: %w", err)
	}
	cfg.LoginLockout, err = time.ParseDuration(getEnv("LOGIN_LOCKOUT", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_LOCKOUT: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
