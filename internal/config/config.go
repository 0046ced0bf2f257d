package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"ge-price-monitor/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Prices    PricesConfig    `mapstructure:"prices"`
	Wiki      WikiConfig      `mapstructure:"wiki"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates the optional PostgreSQL quote history.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Retention       time.Duration `mapstructure:"retention"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// PricesConfig covers the real-time prices API.
type PricesConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// WikiConfig covers the wiki API used for item icons.
type WikiConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	ThumbSize      int           `mapstructure:"thumb_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AlertingConfig defines notification routing.
type AlertingConfig struct {
	Channels []string       `mapstructure:"channels"`
	Desktop  DesktopConfig  `mapstructure:"desktop"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// DesktopConfig controls OS notifications.
type DesktopConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	WithIcon bool          `mapstructure:"with_icon"`
}

// TelegramConfig describes the Telegram channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gewatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("scheduler.interval", "60s")
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("prices.base_url", "https://prices.runescape.wiki/api/v1/osrs")
	v.SetDefault("prices.request_timeout", "10s")
	v.SetDefault("prices.user_agent", "gewatch/1.0 (grand exchange price monitor)")

	v.SetDefault("wiki.api_url", "https://oldschool.runescape.wiki/api.php")
	v.SetDefault("wiki.thumb_size", 100)
	v.SetDefault("wiki.request_timeout", "10s")

	v.SetDefault("alerting.channels", []string{"desktop"})
	v.SetDefault("alerting.desktop.timeout", "5s")
	v.SetDefault("alerting.desktop.with_icon", true)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 10000)

	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.retention", "0s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Database.Retention < 0 {
		return fmt.Errorf("database.retention must not be negative")
	}
	if c.Prices.BaseURL == "" {
		return fmt.Errorf("prices.base_url must be set")
	}
	for _, ch := range c.Alerting.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "desktop", "telegram", "log":
		default:
			return fmt.Errorf("alerting.channels: unknown channel %q", ch)
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// ResolveRetention returns either the CLI override or database.retention.
func (c *Config) ResolveRetention(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return c.Database.Retention
}

// ResolveInterval returns either the CLI override or the scheduler interval.
func (c *Config) ResolveInterval(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return c.Scheduler.Interval
}
