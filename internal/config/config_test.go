package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/novalearn/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nova.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	l, err := cfg.Ladder()
	require.NoError(t, err)
	assert.Equal(t, progression.DefaultLadder, l)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, `
flavor: mentoro
database:
  type: sqlite
  sqlite_path: /tmp/mentoro.db
redis:
  url: redis://localhost:6379/1
  ttl: 2h
notifications:
  start_hour: 9
  end_hour: 20
ranks:
  - min_xp: 0
    rank: Beginner
  - min_xp: 3000
    rank: Frontend Specialist
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mentoro", cfg.Flavor)
	assert.Equal(t, "/tmp/mentoro.db", cfg.Database.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 9, cfg.Notifications.StartHour)

	l, err := cfg.Ladder()
	require.NoError(t, err)
	assert.Equal(t, progression.Rank("Frontend Specialist"), l.RankFor(3500))
}

func TestEnvOverrides(t *testing.T) {
	t.Run("environment wins over file", func(t *testing.T) {
		path := writeConfig(t, "gemini:\n  model: file-model\n")
		t.Setenv("GEMINI_MODEL", "env-model")
		t.Setenv("GEMINI_API_KEY", "key-from-env-123")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-model", cfg.Gemini.Model)
		assert.Equal(t, "key-from-env-123", cfg.Gemini.APIKey)
	})

	t.Run("admin ids skip garbage", func(t *testing.T) {
		t.Setenv("ADMIN_USER_IDS", "12, abc ,34")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, []int64{12, 34}, cfg.Telegram.AdminUserIDs)
	})

	t.Run("out of range hours are ignored", func(t *testing.T) {
		t.Setenv("NOTIFICATION_START_HOUR", "25")
		t.Setenv("NOTIFICATION_END_HOUR", "21")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultNotificationStartHour, cfg.Notifications.StartHour)
		assert.Equal(t, 21, cfg.Notifications.EndHour)
	})
}

func TestValidate_Errors(t *testing.T) {
	tests := map[string]func(c *Config){
		"unknown db":       func(c *Config) { c.Database.Type = "mysql" },
		"postgres w/o url": func(c *Config) { c.Database.Type = "postgres" },
		"inverted hours":   func(c *Config) { c.Notifications.StartHour = 23; c.Notifications.EndHour = 1 },
		"bad timezone":     func(c *Config) { c.Timezone = "Mars/Olympus" },
		"ladder not at 0":  func(c *Config) { c.Ranks = []progression.Tier{{MinXP: 5, Rank: "X"}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.Development = true

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Log.Level = "loud"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
