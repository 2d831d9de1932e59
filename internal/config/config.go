// Load envs from .env
// Load YAML config
// Override with env vars, fill defaults, validate

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type BrowserSource struct {
	Disabled bool   `yaml:"disabled"`
	BaseURL  string `yaml:"base_url"`
	// Cookies exported from a logged in browser, optional
	CookiesFile string `yaml:"cookies_file"`
}

type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`

	//Search defaults
	Search struct {
		DefaultLocation      string        `yaml:"default_location"`
		Country              string        `yaml:"country"`
		RecencyHours         int           `yaml:"recency_hours"`
		ResultsWanted        int           `yaml:"results_wanted"`
		SourceTimeout        time.Duration `yaml:"source_timeout"`
		DisableRecencyFilter bool          `yaml:"disable_recency_filter"`
	} `yaml:"search"`

	Sources struct {
		// Boards served by the bulk adapter: linkedin, arbeitnow, remotive
		Boards          []string      `yaml:"boards"`
		VisaSponsor     BrowserSource `yaml:"visasponsor"`
		EuropeanJobDays BrowserSource `yaml:"europeanjobdays"`
	} `yaml:"sources"`

	Browser struct {
		ShowWindow    bool   `yaml:"show_window"`
		ScreenshotDir string `yaml:"screenshot_dir"`
	} `yaml:"browser"`

	DatabaseURL    string `yaml:"database_url"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	//Paths
	CookiesPath string `yaml:"cookies_path"`
	CachePath   string `yaml:"cache_path"`
}

// Load reads .env, then the YAML file at path (missing file is fine), then
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	if v := os.Getenv("RECENCY_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RECENCY_HOURS: %w", err)
		}
		c.Search.RecencyHours = n
	}
	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SOURCE_TIMEOUT: %w", err)
		}
		c.Search.SourceTimeout = d
	}
	if v := os.Getenv("DEFAULT_LOCATION"); v != "" {
		c.Search.DefaultLocation = v
	}
	if v := os.Getenv("COUNTRY"); v != "" {
		c.Search.Country = v
	}
	if v := os.Getenv("JOB_BOARDS"); v != "" {
		c.Sources.Boards = splitAndTrim(v)
	}
	if v := os.Getenv("COOKIES_PATH"); v != "" {
		c.CookiesPath = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 3 * time.Minute
	}
	if c.Search.DefaultLocation == "" {
		c.Search.DefaultLocation = "Germany"
	}
	if c.Search.Country == "" {
		c.Search.Country = "Germany"
	}
	if c.Search.RecencyHours == 0 {
		c.Search.RecencyHours = 72
	}
	if c.Search.ResultsWanted == 0 {
		c.Search.ResultsWanted = 10
	}
	if c.Search.SourceTimeout == 0 {
		c.Search.SourceTimeout = 90 * time.Second
	}
	if len(c.Sources.Boards) == 0 {
		c.Sources.Boards = []string{"linkedin", "arbeitnow", "remotive"}
	}
	if c.Sources.VisaSponsor.BaseURL == "" {
		c.Sources.VisaSponsor.BaseURL = "https://visasponsor.jobs"
	}
	if c.Sources.EuropeanJobDays.BaseURL == "" {
		c.Sources.EuropeanJobDays.BaseURL = "https://europeanjobdays.eu"
	}
	if c.CookiesPath == "" {
		c.CookiesPath = ".cookies"
	}
	if c.CachePath == "" {
		c.CachePath = ".cache"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Search.RecencyHours < 0 {
		errs = append(errs, errors.New("search.recency_hours cannot be negative"))
	}
	if c.Search.ResultsWanted < 0 {
		errs = append(errs, errors.New("search.results_wanted cannot be negative"))
	}
	if c.Search.SourceTimeout < 0 {
		errs = append(errs, errors.New("search.source_timeout cannot be negative"))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, errors.New("server.request_timeout cannot be negative"))
	}
	for _, b := range c.Sources.Boards {
		switch strings.ToLower(b) {
		case "linkedin", "arbeitnow", "remotive":
		default:
			errs = append(errs, fmt.Errorf("sources.boards: unknown board %q", b))
		}
	}
	return errors.Join(errs...)
}

// RequireTelegram is checked only by commands that send notifications.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required")
	}
	return nil
}

// CookieFile resolves a source's cookie export relative to CookiesPath.
func (c *Config) CookieFile(src BrowserSource) string {
	if src.CookiesFile == "" {
		return ""
	}
	if filepath.IsAbs(src.CookiesFile) {
		return src.CookiesFile
	}
	return filepath.Join(c.CookiesPath, src.CookiesFile)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
