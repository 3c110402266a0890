package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileEnv = "CONFIG_FILE"
	portEnv       = "PORT"
	logLevelEnv   = "LOG_LEVEL"
	environEnv    = "ENV"
	cronSecretEnv = "CRON_SECRET"

	defaultPort        = "8080"
	defaultEnvironment = "development"

	EnvironmentProduction = "production"
)

type Config struct {
	Port        string
	LogLevel    slog.Level
	Environment string
	CronSecret  string
	Alert       *AlertConfig
	Email       *EmailConfig
	Database    *DatabaseConfig
	Redis       *RedisConfig
	RunRecorder *RunRecorderConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Load reads the configuration from the environment. When CONFIG_FILE points at a
// YAML file its keys (lower-cased env names) are used for anything the environment
// does not set.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return LoadFrom(v)
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	environment := strings.ToLower(stringOr(v, environEnv, defaultEnvironment))

	alertConfig, err := LoadAlertConfig(v, environment)
	if err != nil {
		return nil, err
	}

	emailConfig, err := LoadEmailConfig(v)
	if err != nil {
		return nil, err
	}

	redisConfig, err := LoadRedisConfig(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        stringOr(v, portEnv, defaultPort),
		LogLevel:    parseLogLevel(v.GetString(logLevelEnv)),
		Environment: environment,
		CronSecret:  v.GetString(cronSecretEnv),
		Alert:       alertConfig,
		Email:       emailConfig,
		Database:    LoadDatabaseConfig(v),
		Redis:       redisConfig,
		RunRecorder: LoadRunRecorderConfig(v),
	}, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	path := os.Getenv(configFileEnv)
	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}

func stringOr(v *viper.Viper, key, fallback string) string {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	return fallback
}

// positiveIntOr keeps the fallback when the value is missing, malformed or not positive.
func positiveIntOr(v *viper.Viper, key string, fallback int) int {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		slog.Warn("ignoring invalid configuration value",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", fallback),
		)
		return fallback
	}
	return parsed
}

func boolOr(v *viper.Viper, key string, fallback bool) bool {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
