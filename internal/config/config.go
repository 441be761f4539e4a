package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Browser  BrowserConfig  `mapstructure:"browser"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type SessionConfig struct {
	DefaultTerm string `mapstructure:"default_term"`
	HistorySize int    `mapstructure:"history_size"`
	StorageKey  string `mapstructure:"storage_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit     string `mapstructure:"quit"`
	Focus    string `mapstructure:"focus"`
	LoadMore string `mapstructure:"load_more"`
	Remove   string `mapstructure:"remove"`
	Sort     string `mapstructure:"sort"`
	Open     string `mapstructure:"open"`
	Find     string `mapstructure:"find"`
	Back     string `mapstructure:"back"`
	Help     string `mapstructure:"help"`
}

type BrowserConfig struct {
	Opener string `mapstructure:"opener"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".hnsearch.db")
	searchIndexPath := filepath.Join(homeDir, ".hnsearch", "index.bleve")

	return &Config{
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		API: APIConfig{
			BaseURL:           "https://hn.algolia.com/api/v1",
			HTTPTimeout:       30 * time.Second,
			UserAgent:         "hnsearch/1.0 (https://github.com/pders01/hnsearch)",
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Session: SessionConfig{
			DefaultTerm: "React",
			HistorySize: 5,
			StorageKey:  "search",
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".hnsearch", "hnsearch.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6600",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:     "ctrl+c",
				Focus:    "tab",
				LoadMore: "m",
				Remove:   "x",
				Sort:     "s",
				Open:     "o",
				Find:     "/",
				Back:     "esc",
				Help:     "?",
			},
		},
		Browser: BrowserConfig{
			Opener: getDefaultOpener(),
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

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "hnsearch")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HNSEARCH")
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

	if config.Session.HistorySize <= 0 {
		config.Session.HistorySize = defaultConfig().Session.HistorySize
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so a config file that sets only part
// of a section keeps the defaults for the rest.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)

	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.http_timeout", cfg.API.HTTPTimeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("api.burst", cfg.API.Burst)

	v.SetDefault("session.default_term", cfg.Session.DefaultTerm)
	v.SetDefault("session.history_size", cfg.Session.HistorySize)
	v.SetDefault("session.storage_key", cfg.Session.StorageKey)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)

	c := cfg.UI.Colors
	v.SetDefault("ui.colors.primary", c.Primary)
	v.SetDefault("ui.colors.secondary", c.Secondary)
	v.SetDefault("ui.colors.accent", c.Accent)
	v.SetDefault("ui.colors.text", c.Text)
	v.SetDefault("ui.colors.muted", c.Muted)
	v.SetDefault("ui.colors.error", c.Error)
	v.SetDefault("ui.colors.success", c.Success)

	b := cfg.Keys.Bindings
	v.SetDefault("keys.bindings.quit", b.Quit)
	v.SetDefault("keys.bindings.focus", b.Focus)
	v.SetDefault("keys.bindings.load_more", b.LoadMore)
	v.SetDefault("keys.bindings.remove", b.Remove)
	v.SetDefault("keys.bindings.sort", b.Sort)
	v.SetDefault("keys.bindings.open", b.Open)
	v.SetDefault("keys.bindings.find", b.Find)
	v.SetDefault("keys.bindings.back", b.Back)
	v.SetDefault("keys.bindings.help", b.Help)

	v.SetDefault("browser.opener", cfg.Browser.Opener)
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
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// ExpandPath is the exported form of expandPath for flag overrides.
func ExpandPath(path string) string {
	return expandPath(path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	apiCfg := map[string]interface{}{
		"base_url":            config.API.BaseURL,
		"http_timeout":        config.API.HTTPTimeout.String(),
		"user_agent":          config.API.UserAgent,
		"requests_per_second": config.API.RequestsPerSecond,
		"burst":               config.API.Burst,
	}

	sessionCfg := map[string]interface{}{
		"default_term": config.Session.DefaultTerm,
		"history_size": config.Session.HistorySize,
		"storage_key":  config.Session.StorageKey,
	}

	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	c := config.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":   c.Primary,
			"secondary": c.Secondary,
			"accent":    c.Accent,
			"text":      c.Text,
			"muted":     c.Muted,
			"error":     c.Error,
			"success":   c.Success,
		},
	}

	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"bindings": map[string]interface{}{
			"quit":      b.Quit,
			"focus":     b.Focus,
			"load_more": b.LoadMore,
			"remove":    b.Remove,
			"sort":      b.Sort,
			"open":      b.Open,
			"find":      b.Find,
			"back":      b.Back,
			"help":      b.Help,
		},
	}

	v.Set("database", dbCfg)
	v.Set("api", apiCfg)
	v.Set("session", sessionCfg)
	v.Set("log", logCfg)
	v.Set("ui", uiCfg)
	v.Set("keys", keysCfg)
	v.Set("browser", map[string]interface{}{"opener": config.Browser.Opener})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
