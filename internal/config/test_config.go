package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			ConnectTimeout: 2 * time.Second,
			ReadTimeout:    2 * time.Second,
			UserAgent:      "podfeed-test/1.0",
			MaxBodyBytes:   1 << 20,
			MaxConcurrent:  2,
		},
		Catalog: CatalogConfig{
			BaseURL: "http://127.0.0.1/",
			Media:   "podcast",
			Limit:   10,
			Timeout: 2 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
		},
		Media: defaultConfig().Media,
	}
}
