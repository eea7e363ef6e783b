package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Feed.ConnectTimeout != 30*time.Second {
		t.Errorf("Feed.ConnectTimeout = %v, want 30s", cfg.Feed.ConnectTimeout)
	}
	if cfg.Feed.ReadTimeout != 30*time.Second {
		t.Errorf("Feed.ReadTimeout = %v, want 30s", cfg.Feed.ReadTimeout)
	}
	if cfg.Feed.UserAgent == "" {
		t.Error("Feed.UserAgent should not be empty")
	}
	if cfg.Feed.MaxConcurrent != 5 {
		t.Errorf("Feed.MaxConcurrent = %d, want 5", cfg.Feed.MaxConcurrent)
	}

	if cfg.Catalog.BaseURL != "https://itunes.apple.com/" {
		t.Errorf("Catalog.BaseURL = %s", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Media != "all" || cfg.Catalog.Limit != 50 {
		t.Errorf("Catalog = %+v, want media=all limit=50", cfg.Catalog)
	}

	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want off", cfg.Log.Level)
	}

	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Feed.ReadTimeout != 30*time.Second {
		t.Errorf("Feed.ReadTimeout = %v, want 30s", cfg.Feed.ReadTimeout)
	}
	if !filepath.IsAbs(cfg.Database.Path) {
		t.Errorf("Database.Path = %s, want absolute path", cfg.Database.Path)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[database]
path = "/tmp/test.db"
timeout = "10s"

[feed]
connect_timeout = "5s"
read_timeout = "45s"
user_agent = "test-agent"

[catalog]
limit = 5
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Feed.ConnectTimeout != 5*time.Second {
		t.Errorf("Feed.ConnectTimeout = %v, want 5s", cfg.Feed.ConnectTimeout)
	}
	if cfg.Feed.ReadTimeout != 45*time.Second {
		t.Errorf("Feed.ReadTimeout = %v, want 45s", cfg.Feed.ReadTimeout)
	}
	if cfg.Feed.UserAgent != "test-agent" {
		t.Errorf("Feed.UserAgent = %s, want 'test-agent'", cfg.Feed.UserAgent)
	}
	// Keys missing from the file keep their defaults
	if cfg.Feed.MaxConcurrent != 5 {
		t.Errorf("Feed.MaxConcurrent = %d, want default 5", cfg.Feed.MaxConcurrent)
	}
	if cfg.Catalog.Limit != 5 {
		t.Errorf("Catalog.Limit = %d, want 5", cfg.Catalog.Limit)
	}
	if cfg.Catalog.Media != "all" {
		t.Errorf("Catalog.Media = %s, want default 'all'", cfg.Catalog.Media)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.Database.Path = "/test/path.db"
	cfg.Feed.ReadTimeout = 12 * time.Second
	cfg.Feed.UserAgent = "test-save-agent"
	cfg.Media.DefaultOpener = "test-opener"

	savePath := filepath.Join(tmpDir, "nested", "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Feed.UserAgent != cfg.Feed.UserAgent {
		t.Errorf("Loaded Feed.UserAgent = %s, want %s", loaded.Feed.UserAgent, cfg.Feed.UserAgent)
	}
	if loaded.Feed.ReadTimeout != cfg.Feed.ReadTimeout {
		t.Errorf("Loaded Feed.ReadTimeout = %v, want %v", loaded.Feed.ReadTimeout, cfg.Feed.ReadTimeout)
	}
	if loaded.Media.DefaultOpener != "test-opener" {
		t.Errorf("Loaded Media.DefaultOpener = %s, want test-opener", loaded.Media.DefaultOpener)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Feed.ConnectTimeout != 30*time.Second {
		t.Errorf("Generated config has Feed.ConnectTimeout = %v, want 30s", cfg.Feed.ConnectTimeout)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandPath("~/x/db"); got != filepath.Join(home, "x", "db") {
		t.Errorf("expandPath(~/x/db) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q, want empty", got)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.Feed.UserAgent != "podfeed-test/1.0" {
		t.Errorf("TestConfig Feed.UserAgent = %s, want 'podfeed-test/1.0'", cfg.Feed.UserAgent)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("PODFEED_FEED_READ_TIMEOUT", "5s")
	t.Setenv("PODFEED_CATALOG_MEDIA", "podcast")

	cfg, err := Load(filepath.Join(tmpDir, "missing-ok.toml"))
	if err == nil {
		t.Fatal("Load() with explicit missing file should fail")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Feed.ReadTimeout != 5*time.Second {
		t.Errorf("Feed.ReadTimeout = %v, want 5s from environment", cfg.Feed.ReadTimeout)
	}
	if cfg.Catalog.Media != "podcast" {
		t.Errorf("Catalog.Media = %s, want podcast from environment", cfg.Catalog.Media)
	}
	if cfg.Feed.ConnectTimeout != 30*time.Second {
		t.Errorf("Feed.ConnectTimeout = %v, want default 30s", cfg.Feed.ConnectTimeout)
	}
}
