package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"simrelative/pkg/irsdk"
)

// EnvPrefix prefixes every environment override, e.g. SIMREL_WEB_ADDRESS.
const EnvPrefix = "SIMREL_"

type TelemetryConfig struct {
	RegionName  string        `yaml:"region_name" env:"REGION_NAME"`
	SignalName  string        `yaml:"signal_name" env:"SIGNAL_NAME"`
	PollTimeout time.Duration `yaml:"poll_timeout" env:"POLL_TIMEOUT"`
	Reconnect   time.Duration `yaml:"reconnect" env:"RECONNECT"`
}

// RelativeConfig sizes the window around the player.
type RelativeConfig struct {
	Ahead  int `yaml:"ahead" env:"AHEAD"`
	Behind int `yaml:"behind" env:"BEHIND"`
}

type WebConfig struct {
	Enabled      bool          `yaml:"enabled" env:"ENABLED"`
	Address      string        `yaml:"address" env:"ADDRESS"`
	PushInterval time.Duration `yaml:"push_interval" env:"PUSH_INTERVAL"`
}

type SettingsConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type LogConfig struct {
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

type NotifyConfig struct {
	Enabled bool    `yaml:"enabled" env:"NOTIFY_ENABLED"`
	Token   string  `yaml:"token" env:"TELEGRAM_TOKEN"`
	ChatIDs []int64 `yaml:"chat_ids" env:"TELEGRAM_CHAT_IDS" envSeparator:","`
}

// Config is the top-level configuration of the application.
type Config struct {
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Relative  RelativeConfig  `yaml:"relative" envPrefix:"RELATIVE_"`
	Web       WebConfig       `yaml:"web" envPrefix:"WEB_"`
	Settings  SettingsConfig  `yaml:"settings" envPrefix:"SETTINGS_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Notify    NotifyConfig    `yaml:"notify"`
}

func Default() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			RegionName:  irsdk.DefaultRegionName,
			SignalName:  irsdk.DefaultSignalName,
			PollTimeout: 16 * time.Millisecond,
			Reconnect:   time.Second,
		},
		Relative: RelativeConfig{Ahead: 4, Behind: 4},
		Web: WebConfig{
			Enabled:      true,
			Address:      "127.0.0.1:8080",
			PushInterval: 100 * time.Millisecond,
		},
		Settings: SettingsConfig{Path: "./simrelative.db"},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig applies, in order, the defaults, the YAML file at filePath (if
// any) and the SIMREL_* environment variables.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overrides target from environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Relative.Ahead < 0 || c.Relative.Behind < 0 {
		return fmt.Errorf("relative window must not be negative: ahead %d, behind %d", c.Relative.Ahead, c.Relative.Behind)
	}
	if c.Telemetry.PollTimeout <= 0 {
		return fmt.Errorf("telemetry poll_timeout must be positive")
	}
	if c.Telemetry.Reconnect <= 0 {
		return fmt.Errorf("telemetry reconnect must be positive")
	}
	if c.Web.Enabled && c.Web.PushInterval <= 0 {
		return fmt.Errorf("web push_interval must be positive")
	}
	if c.Notify.Enabled && c.Notify.Token == "" {
		return fmt.Errorf("notify enabled without a telegram token")
	}
	return nil
}
