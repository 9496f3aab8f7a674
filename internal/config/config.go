// Package config loads monkquest settings from a YAML file and MQ_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"monkquest/internal/storage"
)

const EnvPrefix = "MQ"

type Config struct {
	DBPath         string        `mapstructure:"db_path"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	Notifications  bool          `mapstructure:"notifications"`
	MinSuccessRate int           `mapstructure:"-"`
	LogLevel       string        `mapstructure:"log_level"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-"`
}

// DefaultConfigPath is $XDG_CONFIG_HOME/monkquest/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "monkquest", "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		dbPath = ".monkquest.db"
	}
	v.SetDefault("db_path", dbPath)
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("flush_interval", "30s")
	v.SetDefault("notifications", true)
	v.SetDefault("monk.min_success_rate", 50)
	v.SetDefault("log_level", "warn")
}

// Load reads path (or the default location when path is empty). A missing
// file yields the defaults; environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err == nil {
			path = p
		}
	}

	var file string
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
				if explicit {
					return nil, fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
				}
			default:
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else {
			file = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.MinSuccessRate = v.GetInt("monk.min_success_rate")
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.File = file

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive, got %s", c.FlushInterval)
	}
	if c.MinSuccessRate < 0 || c.MinSuccessRate > 100 {
		return fmt.Errorf("monk.min_success_rate must be within 0..100, got %d", c.MinSuccessRate)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug|info|warn|error, got %q", s)
	}
}

// NewLogger builds the text logger used by every command.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
