package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Media    MediaConfig    `mapstructure:"media"`
}

// FeedConfig controls how feed documents are retrieved.
type FeedConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
}

// CatalogConfig points at the podcast catalog search endpoint.
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Media   string        `mapstructure:"media"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Audio []string `mapstructure:"audio"`
	Video []string `mapstructure:"video"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".podfeed")

	return &Config{
		Feed: FeedConfig{
			ConnectTimeout:    30 * time.Second,
			ReadTimeout:       30 * time.Second,
			UserAgent:         "podfeed/1.0 (https://github.com/pders01/podfeed)",
			MaxBodyBytes:      20 << 20,
			RequestsPerSecond: 0,
			MaxConcurrent:     5,
		},
		Catalog: CatalogConfig{
			BaseURL: "https://itunes.apple.com/",
			Media:   "all",
			Limit:   50,
			Timeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "subscriptions.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level:      "off",
			File:       filepath.Join(dataDir, "podfeed.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Audio: []string{"mpv", "vlc", "open"},
				Video: []string{"iina", "mpv", "vlc"},
			},
			Linux: MediaPlayers{
				Audio: []string{"mpv", "vlc", "mplayer"},
				Video: []string{"mpv", "vlc", "mplayer"},
			},
			Windows: MediaPlayers{
				Audio: []string{"mpv", "vlc"},
				Video: []string{"mpv", "vlc"},
			},
			DefaultOpener: getDefaultOpener(),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "podfeed", "config.toml")
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("feed.connect_timeout", cfg.Feed.ConnectTimeout)
	v.SetDefault("feed.read_timeout", cfg.Feed.ReadTimeout)
	v.SetDefault("feed.user_agent", cfg.Feed.UserAgent)
	v.SetDefault("feed.max_body_bytes", cfg.Feed.MaxBodyBytes)
	v.SetDefault("feed.requests_per_second", cfg.Feed.RequestsPerSecond)
	v.SetDefault("feed.max_concurrent", cfg.Feed.MaxConcurrent)

	v.SetDefault("catalog.base_url", cfg.Catalog.BaseURL)
	v.SetDefault("catalog.media", cfg.Catalog.Media)
	v.SetDefault("catalog.limit", cfg.Catalog.Limit)
	v.SetDefault("catalog.timeout", cfg.Catalog.Timeout)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)

	v.SetDefault("media.darwin.audio", cfg.Media.Darwin.Audio)
	v.SetDefault("media.darwin.video", cfg.Media.Darwin.Video)
	v.SetDefault("media.linux.audio", cfg.Media.Linux.Audio)
	v.SetDefault("media.linux.video", cfg.Media.Linux.Video)
	v.SetDefault("media.windows.audio", cfg.Media.Windows.Audio)
	v.SetDefault("media.windows.video", cfg.Media.Windows.Video)
	v.SetDefault("media.default_opener", cfg.Media.DefaultOpener)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PODFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings so the TOML stays readable
	feedCfg := map[string]interface{}{
		"connect_timeout":     config.Feed.ConnectTimeout.String(),
		"read_timeout":        config.Feed.ReadTimeout.String(),
		"user_agent":          config.Feed.UserAgent,
		"max_body_bytes":      config.Feed.MaxBodyBytes,
		"requests_per_second": config.Feed.RequestsPerSecond,
		"max_concurrent":      config.Feed.MaxConcurrent,
	}

	catalogCfg := map[string]interface{}{
		"base_url": config.Catalog.BaseURL,
		"media":    config.Catalog.Media,
		"limit":    config.Catalog.Limit,
		"timeout":  config.Catalog.Timeout.String(),
	}

	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	logCfg := map[string]interface{}{
		"level":       config.Log.Level,
		"file":        config.Log.File,
		"max_size_mb": config.Log.MaxSizeMB,
		"max_backups": config.Log.MaxBackups,
	}

	v.Set("feed", feedCfg)
	v.Set("catalog", catalogCfg)
	v.Set("database", dbCfg)
	v.Set("log", logCfg)
	v.Set("media", map[string]interface{}{
		"darwin":         playersMap(config.Media.Darwin),
		"linux":          playersMap(config.Media.Linux),
		"windows":        playersMap(config.Media.Windows),
		"default_opener": config.Media.DefaultOpener,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func playersMap(p MediaPlayers) map[string]interface{} {
	return map[string]interface{}{
		"audio": p.Audio,
		"video": p.Video,
	}
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
