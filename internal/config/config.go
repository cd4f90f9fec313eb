// Package config loads runtime configuration from an optional YAML file,
// a .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/novalearn/internal/progression"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for the reminder window
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Config is the full application configuration
type Config struct {
	Flavor        string              `yaml:"flavor"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`
	Timezone      string              `yaml:"timezone"`
	Ranks         []progression.Tier  `yaml:"ranks"`
}

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	Type       string `yaml:"type"` // sqlite or postgres
	SQLitePath string `yaml:"sqlite_path"`
	URL        string `yaml:"url"`
}

// RedisConfig enables the snapshot cache when URL is set
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// TelegramConfig configures the bot front-end
type TelegramConfig struct {
	Token        string  `yaml:"token"`
	AdminUserIDs []int64 `yaml:"admin_user_ids"`
}

// GeminiConfig configures the mentor's model access
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// NotificationsConfig bounds the hours reminders may be sent in
type NotificationsConfig struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// LogConfig configures zap
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Flavor: "mednova",
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: "data/nova.db",
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Notifications: NotificationsConfig{
			StartHour: DefaultNotificationStartHour,
			EndHour:   DefaultNotificationEndHour,
		},
		Log: LogConfig{
			Level: "info",
		},
		Timezone: "UTC",
	}
}

// Load reads path (if non-empty), then .env, then the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOVA_FLAVOR"); v != "" {
		c.Flavor = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Database.Type = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("ADMIN_USER_IDS"); v != "" {
		c.Telegram.AdminUserIDs = parseIDs(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if h, ok := getenvHour("NOTIFICATION_START_HOUR"); ok {
		c.Notifications.StartHour = h
	}
	if h, ok := getenvHour("NOTIFICATION_END_HOUR"); ok {
		c.Notifications.EndHour = h
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.Type == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("database url is required for postgres")
	}
	if c.Notifications.StartHour > c.Notifications.EndHour {
		return fmt.Errorf("notification start hour %d is after end hour %d",
			c.Notifications.StartHour, c.Notifications.EndHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Ladder(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Ladder returns the configured rank ladder, or the default one
func (c *Config) Ladder() (progression.Ladder, error) {
	if len(c.Ranks) == 0 {
		return progression.DefaultLadder, nil
	}
	l, err := progression.NewLadder(c.Ranks)
	if err != nil {
		return nil, fmt.Errorf("invalid rank ladder: %w", err)
	}
	return l, nil
}

func parseIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getenvHour(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
