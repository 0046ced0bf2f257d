package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, "https://prices.runescape.wiki/api/v1/osrs", cfg.Prices.BaseURL)
	assert.Equal(t, []string{"desktop"}, cfg.Alerting.Channels)
	assert.Equal(t, 5*time.Second, cfg.Alerting.Desktop.Timeout)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gewatch.yaml")
	body := []byte("scheduler:\n  interval: 30s\nalerting:\n  channels: log,desktop\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("GEWATCH_PRICES_USER_AGENT", "test-agent")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"log", "desktop"}, cfg.Alerting.Channels)
	assert.Equal(t, "test-agent", cfg.Prices.UserAgent)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Scheduler: SchedulerConfig{Interval: time.Minute},
			Prices:    PricesConfig{BaseURL: "http://localhost"},
			Export:    ExportConfig{MaxDataPoints: 10},
			Alerting:  AlertingConfig{Channels: []string{"desktop"}},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Scheduler.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Alerting.Channels = []string{"pager"}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Alerting.Telegram.Enabled = true
	cfg.Alerting.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate(), "missing chat id")

	cfg = base()
	cfg.Database.Retention = -time.Hour
	assert.Error(t, cfg.Validate())
}

func TestResolveOverrides(t *testing.T) {
	cfg := Config{Scheduler: SchedulerConfig{Interval: time.Minute}, Export: ExportConfig{MaxDataPoints: 50}}

	assert.Equal(t, time.Minute, cfg.ResolveInterval(0))
	assert.Equal(t, 5*time.Second, cfg.ResolveInterval(5*time.Second))
	assert.Equal(t, 50, cfg.ResolveMaxPoints(0))
	assert.Equal(t, 7, cfg.ResolveMaxPoints(7))

	assert.Zero(t, cfg.ResolveRetention(0))
	cfg.Database.Retention = 720 * time.Hour
	assert.Equal(t, 720*time.Hour, cfg.ResolveRetention(0))
	assert.Equal(t, time.Hour, cfg.ResolveRetention(time.Hour))
}
