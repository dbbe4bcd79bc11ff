package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcin-skalski/pomo/internal/timer"
	"gopkg.in/yaml.v3"
)

const appName = "pomo"

type Config struct {
	APIURL         string        `yaml:"api_url"`
	TokenFile      string        `yaml:"token_file"`
	LogFile        string        `yaml:"log_file"`
	RequestTimeout time.Duration `yaml:"-"`
	RawTimeout     string        `yaml:"request_timeout"`
	Log            LogConfig     `yaml:"log"`
	TUI            TUIConfig     `yaml:"tui"`
	Timer          TimerConfig   `yaml:"timer"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TUIConfig struct {
	RefreshInterval time.Duration `yaml:"-"`
	RawInterval     string        `yaml:"refresh_interval"`
}

type TimerConfig struct {
	RawWork               string `yaml:"work"`
	RawShortBreak         string `yaml:"short_break"`
	RawLongBreak          string `yaml:"long_break"`
	CyclesBeforeLongBreak int    `yaml:"cycles_before_long_break"`
	AutoStart             bool   `yaml:"auto_start"`

	Work       time.Duration `yaml:"-"`
	ShortBreak time.Duration `yaml:"-"`
	LongBreak  time.Duration `yaml:"-"`
}

// Engine converts the parsed section into the timer engine's config.
func (t TimerConfig) Engine() timer.Config {
	return timer.Config{
		Work:                  t.Work,
		ShortBreak:            t.ShortBreak,
		LongBreak:             t.LongBreak,
		CyclesBeforeLongBreak: t.CyclesBeforeLongBreak,
		AutoStart:             t.AutoStart,
	}
}

// DefaultPath is the config file location used when --config is not given.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// Load reads path, applies defaults and validates the result. A missing
// file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("POMO_API_URL"); v != "" {
		cfg.APIURL = v
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// SetAPIURL replaces api_url, typically from a command-line flag.
func (c *Config) SetAPIURL(raw string) error {
	prev := c.APIURL
	c.APIURL = strings.TrimRight(raw, "/")
	if err := c.validate(); err != nil {
		c.APIURL = prev
		return err
	}
	return nil
}

func (c *Config) setDefaults() error {
	if c.APIURL == "" {
		c.APIURL = "http://localhost:8080"
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	dir := baseDir()
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(dir, "credentials.yaml")
	}
	c.TokenFile = expandHome(c.TokenFile)
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "logs", "pomo.log")
	}
	c.LogFile = expandHome(c.LogFile)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	var err error
	if c.RequestTimeout, err = parseDuration("request_timeout", c.RawTimeout, "10s"); err != nil {
		return err
	}
	if c.TUI.RefreshInterval, err = parseDuration("tui.refresh_interval", c.TUI.RawInterval, "200ms"); err != nil {
		return err
	}
	if c.Timer.Work, err = parseDuration("timer.work", c.Timer.RawWork, timer.DefaultWork.String()); err != nil {
		return err
	}
	if c.Timer.ShortBreak, err = parseDuration("timer.short_break", c.Timer.RawShortBreak, timer.DefaultShortBreak.String()); err != nil {
		return err
	}
	if c.Timer.LongBreak, err = parseDuration("timer.long_break", c.Timer.RawLongBreak, timer.DefaultLongBreak.String()); err != nil {
		return err
	}
	if c.Timer.CyclesBeforeLongBreak == 0 {
		c.Timer.CyclesBeforeLongBreak = timer.DefaultCyclesBeforeLongBreak
	}

	return nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url %q: host required", c.APIURL)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RawTimeout)
	}
	if c.TUI.RefreshInterval <= 0 {
		return fmt.Errorf("tui.refresh_interval must be positive, got %s", c.TUI.RawInterval)
	}

	phases := []struct {
		name string
		d    time.Duration
	}{
		{"timer.work", c.Timer.Work},
		{"timer.short_break", c.Timer.ShortBreak},
		{"timer.long_break", c.Timer.LongBreak},
	}
	for _, p := range phases {
		if p.d < time.Second {
			return fmt.Errorf("%s must be at least 1s, got %s", p.name, p.d)
		}
		if p.d%time.Second != 0 {
			return fmt.Errorf("%s must be a whole number of seconds, got %s", p.name, p.d)
		}
	}
	// Sessions are stored in whole minutes and the API rejects zero.
	if c.Timer.Work < time.Minute || c.Timer.Work%time.Minute != 0 {
		return fmt.Errorf("timer.work must be a whole number of minutes, got %s", c.Timer.Work)
	}
	if c.Timer.CyclesBeforeLongBreak < 1 {
		return fmt.Errorf("timer.cycles_before_long_break must be positive, got %d", c.Timer.CyclesBeforeLongBreak)
	}
	return nil
}

func parseDuration(key, raw, def string) (time.Duration, error) {
	if raw == "" {
		raw = def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return d, nil
}

func baseDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(dir, appName)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
