package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers supported by the repository layer.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	StaticDir string

	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Exports   ExportsConfig
	Dashboard DashboardConfig
	Seed      SeedConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver  string
	DataDir string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig throttles the public auth endpoints.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// CORSConfig controls browser access. An empty origin list allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportsConfig configures rendered report storage and download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// DashboardConfig tunes aggregate thresholds.
type DashboardConfig struct {
	StaleAfter time.Duration
}

// SeedConfig bootstraps the first admin account on an empty store.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = strings.TrimRight(v.GetString("API_PREFIX"), "/")
	cfg.StaticDir = v.GetString("STATIC_DIR")

	cfg.Storage = StorageConfig{
		Driver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DataDir: v.GetString("DATA_DIR"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:  v.GetBool("ENABLE_RATE_LIMIT"),
		Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
		Window:   parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		AllowedHeaders: splitAndTrim(v.GetString("CORS_ALLOWED_HEADERS")),
		ExposedHeaders: splitAndTrim(v.GetString("CORS_EXPOSED_HEADERS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.Dashboard = DashboardConfig{
		StaleAfter: parseDuration(v.GetString("STALE_AFTER"), 21*24*time.Hour),
	}

	cfg.Seed = SeedConfig{
		AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("STATIC_DIR", "./web/dist")

	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("DATA_DIR", "./data")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "trainee_tracker")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_RATE_LIMIT", false)
	v.SetDefault("RATE_LIMIT_REQUESTS", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "trainee-tracker")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Requested-With,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID,Content-Disposition,Retry-After")
	v.SetDefault("CORS_MAX_AGE", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("STALE_AFTER", "504h")

	v.SetDefault("SEED_ADMIN_EMAIL", "")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
}

// isMissingFile reports whether viper failed because .env is absent; viper
// returns a plain fs error rather than ConfigFileNotFoundError when
// SetConfigFile is used.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
