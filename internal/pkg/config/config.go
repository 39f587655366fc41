package config

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ManuelReschke/SubDesk/internal/pkg/env"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppEnv      string
	AppHost     string
	AppPort     string
	LogLevel    string
	Timezone    string
	ViewsDir    string
	PublicDir   string
	SeedOnStart bool

	DB       DBConfig
	Cache    CacheConfig
	Asaas    AsaasConfig
	Metrics  MetricsConfig
	Uploads  UploadConfig
	S3       S3Config
	Limiter  LimiterConfig
	Sessions SessionConfig
}

type DBConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a redis compatible cache is configured.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type AsaasConfig struct {
	APIKey      string
	Environment string
	BaseURL     string
	Timeout     time.Duration
	Description string
}

type MetricsConfig struct {
	Username string
	Password string
}

type UploadConfig struct {
	IconDir     string
	IconURLBase string
	MaxBytes    int
}

type S3Config struct {
	IconsEnabled bool
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	PublicURL    string
}

type LimiterConfig struct {
	Max        int
	Expiration time.Duration
}

type SessionConfig struct {
	Expiration   time.Duration
	CookieSecure bool
}

// Load assembles the configuration from the environment. env.SetupEnvFile
// should run first when a .env file is expected.
func Load() Config {
	appEnv := env.GetEnv("APP_ENV", "prod")

	return Config{
		AppName:     env.GetEnv("APP_NAME", "SubDesk"),
		AppEnv:      appEnv,
		AppHost:     env.GetEnv("APP_HOST", "0.0.0.0"),
		AppPort:     env.GetEnv("APP_PORT", "4000"),
		LogLevel:    env.GetEnv("LOG_LEVEL", "info"),
		Timezone:    env.GetEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		ViewsDir:    env.GetEnv("VIEWS_DIR", "./views"),
		PublicDir:   env.GetEnv("PUBLIC_DIR", "./public"),
		SeedOnStart: env.GetEnvBool("SEED_ON_START", false),
		DB: DBConfig{
			Host:            env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:            env.GetEnv("DB_PORT", "3306"),
			Name:            env.GetEnv("DB_NAME", ""),
			User:            env.GetEnv("DB_USER", ""),
			Password:        env.GetEnv("DB_PASSWORD", ""),
			MaxOpenConns:    env.GetEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    env.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.GetEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     env.GetEnvBool("DB_AUTO_MIGRATE", false),
		},
		Cache: CacheConfig{
			Host:     env.GetEnv("CACHE_HOST", ""),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},
		Asaas: AsaasConfig{
			APIKey:      env.GetEnv("ASAAS_API_KEY", ""),
			Environment: env.GetEnv("ASAAS_ENVIRONMENT", "sandbox"),
			BaseURL:     env.GetEnv("ASAAS_BASE_URL", ""),
			Timeout:     env.GetEnvDuration("ASAAS_TIMEOUT", 20*time.Second),
			Description: env.GetEnv("ASAAS_SUBSCRIPTION_DESCRIPTION", "Assinatura Mensal - Sistema SaaS"),
		},
		Metrics: MetricsConfig{
			Username: env.GetEnv("METRICS_USER", "admin"),
			Password: env.GetEnv("METRICS_PASSWORD", ""),
		},
		Uploads: UploadConfig{
			IconDir:     env.GetEnv("ICON_UPLOAD_DIR", "./uploads/icons"),
			IconURLBase: env.GetEnv("ICON_URL_BASE", "/uploads/icons"),
			MaxBytes:    env.GetEnvInt("ICON_MAX_BYTES", 2<<20),
		},
		S3: S3Config{
			IconsEnabled: env.GetEnvBool("S3_ICONS_ENABLED", false),
			Bucket:       env.GetEnv("S3_BUCKET", ""),
			Region:       env.GetEnv("S3_REGION", "us-east-1"),
			Endpoint:     env.GetEnv("S3_ENDPOINT", ""),
			AccessKey:    env.GetEnv("S3_ACCESS_KEY", ""),
			SecretKey:    env.GetEnv("S3_SECRET_KEY", ""),
			PublicURL:    env.GetEnv("S3_PUBLIC_URL", ""),
		},
		Limiter: LimiterConfig{
			Max:        env.GetEnvInt("SUBSCRIBE_RATE_LIMIT", 10),
			Expiration: env.GetEnvDuration("SUBSCRIBE_RATE_WINDOW", time.Minute),
		},
		Sessions: SessionConfig{
			Expiration:   env.GetEnvDuration("SESSION_EXPIRATION", time.Hour),
			CookieSecure: appEnv == "prod" && env.GetEnvBool("SESSION_COOKIE_SECURE", true),
		},
	}
}

// IsProduction reports whether the Asaas production endpoint is used.
func (a AsaasConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.Environment), "production")
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
