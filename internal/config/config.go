package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	MediaBackendPassthrough = "passthrough"
	MediaBackendS3          = "s3"
)

type Config struct {
	Env                     string
	LogLevel                string
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	OutboundTimeout         time.Duration

	DatabaseURL  string
	DBMaxConns   int32
	DBMinConns   int32
	DBLogQueries bool

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubAPIURL       string

	MediaBackend        string
	MediaUserFolder     string
	MediaPostFolder     string
	MediaMaxSourceBytes int64
	S3Bucket            string
	S3Region            string
	S3Endpoint          string
	S3AccessKey         string
	S3SecretKey         string
	S3PublicBaseURL     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))

	cfg := &Config{
		Env:                     env,
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		OutboundTimeout:         getDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		DBLogQueries:            getBool("DB_LOG_QUERIES", false),
		AccessTokenSecret:       strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:      strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:          getDuration("ACCESS_TOKEN_TTL", 10*time.Minute),
		RefreshTokenTTL:         getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:              getInt("BCRYPT_COST", 10),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 200),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 20),
		GitHubClientID:          strings.TrimSpace(os.Getenv("GITHUB_CLIENT_ID")),
		GitHubClientSecret:      strings.TrimSpace(os.Getenv("GITHUB_CLIENT_SECRET")),
		GitHubAPIURL:            getEnv("GITHUB_API_URL", "https://api.github.com"),
		MediaBackend:            strings.ToLower(getEnv("MEDIA_BACKEND", defaultMediaBackend(env))),
		MediaUserFolder:         getEnv("MEDIA_USER_FOLDER", "community-api/users"),
		MediaPostFolder:         getEnv("MEDIA_POST_FOLDER", "community-api/posts"),
		MediaMaxSourceBytes:     getInt64("MEDIA_MAX_SOURCE_BYTES", 10<<20),
		S3Bucket:                strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:              strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:             strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:             strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3PublicBaseURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")), "/"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q", EnvDevelopment, EnvProduction)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.OutboundTimeout <= 0 {
		return fmt.Errorf("OUTBOUND_TIMEOUT must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	switch c.MediaBackend {
	case MediaBackendPassthrough:
	case MediaBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 media backend")
		}
		if c.S3PublicBaseURL == "" {
			return fmt.Errorf("S3_PUBLIC_BASE_URL is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q", MediaBackendPassthrough, MediaBackendS3)
	}

	if c.MediaMaxSourceBytes <= 0 {
		return fmt.Errorf("MEDIA_MAX_SOURCE_BYTES must be positive")
	}

	return nil
}

func defaultMediaBackend(env string) string {
	if env == EnvProduction {
		return MediaBackendS3
	}
	return MediaBackendPassthrough
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
