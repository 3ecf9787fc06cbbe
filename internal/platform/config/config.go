package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	RedisURL             string
	JWTSecret            string
	Environment          string
	LogLevel             string
	SeedTenantName       string
	SeedAdminEmail       string
	SeedAdminPassword    string
	SeedDefaultTemplate  bool
	RunMigrations        bool
	RunSeed              bool
	MigrationsDir        string
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	ReportCacheTTL       time.Duration
	FetchTimeout         time.Duration
	OverdueSweepInterval time.Duration
	MetricsEnabled       bool
	EmailEnabled         bool
	EmailFrom            string
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
}

var defaults = map[string]any{
	"app_addr":               ":8080",
	"app_env":                "development",
	"log_level":              "info",
	"seed_tenant_name":       "Default Tenant",
	"seed_default_template":  true,
	"run_migrations":         true,
	"run_seed":               true,
	"migrations_dir":         "migrations",
	"max_body_bytes":         1048576,
	"rate_limit_per_minute":  60,
	"report_cache_ttl":       "5m",
	"fetch_timeout":          "3s",
	"overdue_sweep_interval": "1h",
	"metrics_enabled":        true,
	"email_enabled":          false,
	"email_from":             "no-reply@example.com",
	"smtp_port":              587,
	"smtp_use_tls":           true,
}

// Load reads the environment, after an optional .env file, into a Config.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		Addr:                 v.GetString("app_addr"),
		DatabaseURL:          v.GetString("database_url"),
		RedisURL:             v.GetString("redis_url"),
		JWTSecret:            v.GetString("jwt_secret"),
		Environment:          v.GetString("app_env"),
		LogLevel:             strings.ToLower(v.GetString("log_level")),
		SeedTenantName:       v.GetString("seed_tenant_name"),
		SeedAdminEmail:       v.GetString("seed_admin_email"),
		SeedAdminPassword:    v.GetString("seed_admin_password"),
		SeedDefaultTemplate:  v.GetBool("seed_default_template"),
		RunMigrations:        v.GetBool("run_migrations"),
		RunSeed:              v.GetBool("run_seed"),
		MigrationsDir:        v.GetString("migrations_dir"),
		MaxBodyBytes:         v.GetInt64("max_body_bytes"),
		RateLimitPerMinute:   v.GetInt("rate_limit_per_minute"),
		ReportCacheTTL:       v.GetDuration("report_cache_ttl"),
		FetchTimeout:         v.GetDuration("fetch_timeout"),
		OverdueSweepInterval: v.GetDuration("overdue_sweep_interval"),
		MetricsEnabled:       v.GetBool("metrics_enabled"),
		EmailEnabled:         v.GetBool("email_enabled"),
		EmailFrom:            v.GetString("email_from"),
		SMTPHost:             v.GetString("smtp_host"),
		SMTPPort:             v.GetInt("smtp_port"),
		SMTPUser:             v.GetString("smtp_user"),
		SMTPPassword:         v.GetString("smtp_password"),
		SMTPUseTLS:           v.GetBool("smtp_use_tls"),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.ReportCacheTTL < 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must not be negative")
	}
	if c.EmailEnabled && strings.TrimSpace(c.SMTPHost) == "" {
		return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}
