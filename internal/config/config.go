package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	instance *Config
	once     sync.Once
)

// Directory sources
const (
	SourceFile  = "file"
	SourceURL   = "url"
	SourceMySQL = "mysql"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the dashboard configuration file
type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`
	Resources struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"resources"`
	Cache struct {
		Window  time.Duration `yaml:"window"`
		Backend string        `yaml:"backend"`
		Size    int           `yaml:"size"`
	} `yaml:"cache"`
	Directory struct {
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
	} `yaml:"directory"`
	Chart struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`
	Stats struct {
		ZScoreThreshold float64 `yaml:"z_score_threshold"`
	} `yaml:"stats"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = Parse(configPath)
	})

	return instance, err
}

// Parse reads and validates a config file without touching the shared instance
func Parse(configPath string) (*Config, error) {
	cfg := Default()

	data, readErr := os.ReadFile(configPath)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
	}

	if parseErr := yaml.Unmarshal(data, cfg); parseErr != nil {
		return nil, fmt.Errorf("failed to parse config: %w", parseErr)
	}

	cfg.applyEnv()

	if validateErr := cfg.validate(); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

// Default returns the configuration used for keys the file leaves out
func Default() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.Server.Addr = ":8080"
	cfg.Server.StaticDir = "./public"
	cfg.Resources.BaseURL = "http://localhost:8080"
	cfg.Resources.Timeout = 15 * time.Second
	cfg.Cache.Window = 4 * time.Hour
	cfg.Cache.Backend = CacheMemory
	cfg.Cache.Size = 256
	cfg.Directory.Source = SourceFile
	cfg.Directory.Path = "./public/data/sensors.json"
	cfg.Chart.Width = 960
	cfg.Chart.Height = 360
	cfg.Stats.ZScoreThreshold = 2.0
	return cfg
}

// applyEnv lets deployments override the listen address and log level
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Addr = getEnv("HTTP_ADDR", c.Server.Addr)
	c.Resources.BaseURL = getEnv("RESOURCE_BASE_URL", c.Resources.BaseURL)
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

func (c *Config) validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Cache.Window < time.Millisecond {
		return fmt.Errorf("cache.window must be at least 1ms, got %v", c.Cache.Window)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("invalid cache.backend %q (allowed: none, memory, redis)", c.Cache.Backend)
	}
	switch c.Directory.Source {
	case SourceFile, SourceURL:
		if c.Directory.Path == "" {
			return fmt.Errorf("directory.path cannot be empty for source %q", c.Directory.Source)
		}
	case SourceMySQL:
	default:
		return fmt.Errorf("invalid directory.source %q (allowed: file, url, mysql)", c.Directory.Source)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	if c.Stats.ZScoreThreshold <= 0 {
		return fmt.Errorf("stats.z_score_threshold must be positive")
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (allowed: debug, info, warn, error)", s)
	}
}
