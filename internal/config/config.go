package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env            string
		Addr           string
		LogLevel       string
		OriginPatterns []string
	}
	Store struct {
		Driver              string
		DataDir             string
		MasterKeyPassphrase string
		PersistTimeout      time.Duration
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	Discord struct {
		WebhookID      string
		WebhookToken   string
		NotifyInterval time.Duration
	}
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Addr = getEnv("ADDR", ":8080")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.App.OriginPatterns = getEnvAsList("WS_ORIGIN_PATTERNS")

	cfg.Store.Driver = getEnv("STORE_DRIVER", DriverMemory)
	cfg.Store.DataDir = getEnv("DATA_DIR", "./data")
	cfg.Store.MasterKeyPassphrase = getEnv("MASTER_KEY_PASSPHRASE", "")

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "")
	cfg.DB.Name = getEnv("DB_NAME", "dualstrike")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Discord.WebhookID = getEnv("DISCORD_WEBHOOK_ID", "")
	cfg.Discord.WebhookToken = getEnv("DISCORD_WEBHOOK_TOKEN", "")

	var errs error
	var err error
	cfg.Store.PersistTimeout, err = getEnvAsDuration("PERSIST_TIMEOUT", 5*time.Second)
	errs = multierr.Append(errs, err)
	cfg.Discord.NotifyInterval, err = getEnvAsDuration("NOTIFY_INTERVAL", 10*time.Second)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.DataDir == "" {
			errs = multierr.Append(errs, errors.New("DATA_DIR is required for the file store"))
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" || c.DB.User == "" {
			errs = multierr.Append(errs, errors.New("DB_HOST, DB_NAME and DB_USER are required for the postgres store"))
		}
		if c.DB.Password == "" && c.IsProduction() {
			errs = multierr.Append(errs, errors.New("DB_PASSWORD must be set in production"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("STORE_DRIVER %q: want memory, file or postgres", c.Store.Driver))
	}

	if (c.Discord.WebhookID == "") != (c.Discord.WebhookToken == "") {
		errs = multierr.Append(errs, errors.New("DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together"))
	}
	if c.Store.PersistTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("PERSIST_TIMEOUT must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.App.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errs
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func (c *Config) DiscordEnabled() bool { return c.Discord.WebhookID != "" }

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port, c.DB.SSLMode)
}

// NewLogger builds a development console logger outside production and a
// JSON logger in production.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.App.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	if c.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

// getEnvAsDuration accepts Go durations ("750ms") or whole seconds ("5").
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	if secs, err := getEnvAsInt(key, 0); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected duration, got '%s'", key, valueStr)
	}
	return d, nil
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
