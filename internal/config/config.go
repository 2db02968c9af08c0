// Package config loads application configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Goals     GoalsConfig
	Tracking  TrackingConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk storage locations.
type DataConfig struct {
	BasePath string // SQLite database, rollup store and auth key live here
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string // CORS origins for the browser reader
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key (32 bytes), loaded from the data directory at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// GoalsConfig holds the goal values a user gets until they set their own.
type GoalsConfig struct {
	DailyMinutes int
	StreakDays   int
	BooksPerYear int
}

// TrackingConfig controls reading session bucketing and throttling.
type TrackingConfig struct {
	Timezone string
	Location *time.Location
	// Per-user limits on the session heartbeat endpoint.
	SessionRateLimitRPS   float64
	SessionRateLimitBurst int
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	ServiceName string
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config from args with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("readup", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and keys")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 720h)")
	dailyGoal := fs.String("default-daily-goal", "", "Default daily reading goal in minutes (default: 30)")
	streakGoal := fs.String("default-streak-goal", "", "Default streak goal in days (default: 7)")
	booksGoal := fs.String("default-books-goal", "", "Default books per year goal (default: 12)")
	timezone := fs.String("timezone", "", "IANA timezone for day buckets (default: Local)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Goals: GoalsConfig{
			DailyMinutes: getIntConfigValue(*dailyGoal, "DEFAULT_DAILY_GOAL_MINUTES", 30),
			StreakDays:   getIntConfigValue(*streakGoal, "DEFAULT_STREAK_GOAL", 7),
			BooksPerYear: getIntConfigValue(*booksGoal, "DEFAULT_BOOKS_PER_YEAR_GOAL", 12),
		},
		Tracking: TrackingConfig{
			Timezone:              getConfigValue(*timezone, "TIMEZONE", "Local"),
			SessionRateLimitRPS:   getFloatConfigValue("", "SESSION_RATE_LIMIT_RPS", 2),
			SessionRateLimitBurst: getIntConfigValue("", "SESSION_RATE_LIMIT_BURST", 10),
		},
		Telemetry: TelemetryConfig{
			ServiceName: getConfigValue("", "OTEL_SERVICE_NAME", "readup-server"),
		},
	}

	var err error
	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "720h", &cfg.Auth.AccessTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		if *d.dst, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
	}

	if cfg.Tracking.Location, err = time.LoadLocation(cfg.Tracking.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Tracking.Timezone, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Goals.DailyMinutes < 1 || c.Goals.StreakDays < 1 || c.Goals.BooksPerYear < 1 {
		return errors.New("default goals must be at least 1")
	}

	if c.Tracking.SessionRateLimitRPS <= 0 || c.Tracking.SessionRateLimitBurst < 1 {
		return errors.New("session rate limit must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as-is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "ReadUp", "data"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// DatabasePath is the SQLite file holding users, shelves and the session ledger.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "readup.db")
}

// RollupPath is the badger directory holding pre-aggregated lifetime stats.
func (c *Config) RollupPath() string {
	return filepath.Join(c.Data.BasePath, "rollups")
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
