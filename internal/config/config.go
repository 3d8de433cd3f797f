package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type PricesConfig struct {
	SourceURL         string
	FallbackPath      string
	CacheKey          string
	CacheTimestampKey string
	CacheMaxAge       time.Duration
	ForceRefresh      bool
	FetchTimeout      time.Duration
}

type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	OperatorTo []string
}

type ArchiveConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func (c ArchiveConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Prices      PricesConfig
	Mail        MailConfig
	Archive     ArchiveConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("PRICES_FALLBACK_PATH", "prices.json")
	v.SetDefault("PRICES_CACHE_KEY", "seminar_prices")
	v.SetDefault("PRICES_CACHE_TIMESTAMP_KEY", "seminar_prices_timestamp")
	v.SetDefault("PRICES_CACHE_MAX_AGE", "5m")
	v.SetDefault("PRICES_FETCH_TIMEOUT", "10s")
	v.SetDefault("SMTP_PORT", 587)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Prices: PricesConfig{
			SourceURL:         strings.TrimSpace(v.GetString("PRICES_SOURCE_URL")),
			FallbackPath:      strings.TrimSpace(v.GetString("PRICES_FALLBACK_PATH")),
			CacheKey:          v.GetString("PRICES_CACHE_KEY"),
			CacheTimestampKey: v.GetString("PRICES_CACHE_TIMESTAMP_KEY"),
			CacheMaxAge:       v.GetDuration("PRICES_CACHE_MAX_AGE"),
			ForceRefresh:      v.GetBool("PRICES_FORCE_REFRESH"),
			FetchTimeout:      v.GetDuration("PRICES_FETCH_TIMEOUT"),
		},
		Mail: MailConfig{
			Host:       v.GetString("SMTP_HOST"),
			Port:       v.GetInt("SMTP_PORT"),
			Username:   v.GetString("SMTP_USERNAME"),
			Password:   v.GetString("SMTP_PASSWORD"),
			From:       v.GetString("MAIL_FROM"),
			OperatorTo: parseList(v.GetString("MAIL_OPERATOR_TO")),
		},
		Archive: ArchiveConfig{
			Endpoint:      v.GetString("ARCHIVE_ENDPOINT"),
			AccessKey:     v.GetString("ARCHIVE_ACCESS_KEY"),
			SecretKey:     v.GetString("ARCHIVE_SECRET_KEY"),
			Bucket:        v.GetString("ARCHIVE_BUCKET"),
			PublicBaseURL: v.GetString("ARCHIVE_PUBLIC_BASE_URL"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if ms := v.GetInt64("PRICES_CACHE_MAX_AGE_MS"); ms > 0 {
		cfg.Prices.CacheMaxAge = time.Duration(ms) * time.Millisecond
	}
	if cfg.Prices.CacheMaxAge <= 0 {
		cfg.Prices.CacheMaxAge = 5 * time.Minute
	}
	if cfg.Prices.FetchTimeout <= 0 {
		cfg.Prices.FetchTimeout = 10 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateServer checks what only the HTTP service needs.
func (c *Config) ValidateServer() error {
	if c.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is required when SMTP_HOST is set")
	}
	if c.Mail.Host != "" && len(c.Mail.OperatorTo) == 0 {
		return fmt.Errorf("MAIL_OPERATOR_TO is required when SMTP_HOST is set")
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Prices.CacheKey == "" || cfg.Prices.CacheTimestampKey == "" {
		return fmt.Errorf("PRICES_CACHE_KEY and PRICES_CACHE_TIMESTAMP_KEY must not be empty")
	}
	if cfg.Prices.CacheKey == cfg.Prices.CacheTimestampKey {
		return fmt.Errorf("PRICES_CACHE_KEY and PRICES_CACHE_TIMESTAMP_KEY must differ")
	}
	if cfg.Archive.Endpoint != "" && cfg.Archive.Bucket == "" {
		return fmt.Errorf("ARCHIVE_BUCKET is required when ARCHIVE_ENDPOINT is set")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
