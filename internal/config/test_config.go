package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		API: APIConfig{
			BaseURL:     "http://127.0.0.1:0",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "hnsearch-test/1.0",
		},
		Session: SessionConfig{
			DefaultTerm: "React",
			HistorySize: 5,
			StorageKey:  "search",
		},
		Log:     LogConfig{Level: "off"},
		UI:      d.UI,
		Keys:    d.Keys,
		Browser: d.Browser,
	}
}
