package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/gemini"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL resolves the relative document links of the year pages.
const DefaultBaseURL = "https://ofac.treasury.gov"

// DefaultFirstYear is the earliest year with published enforcement actions.
const DefaultFirstYear = 2003

// Config holds the settings read from the configuration file.
type Config struct {
	DBPath    string `yaml:"db_path"`
	StatePath string `yaml:"state_path"`

	Site      SiteConfig      `yaml:"site"`
	PDFToText PDFToTextConfig `yaml:"pdftotext"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Sync      SyncConfig      `yaml:"sync"`

	IDScheme string `yaml:"id_scheme"`
	LogLevel string `yaml:"log_level"`
}

// SiteConfig describes the publishing site.
type SiteConfig struct {
	BaseURL     string  `yaml:"base_url"`
	PageURL     string  `yaml:"page_url"`
	UserAgent   string  `yaml:"user_agent"`
	Timeout     string  `yaml:"timeout"`
	DownloadRPS float64 `yaml:"download_rps"`

	// Browser renders year pages in headless Chrome instead of plain HTTP.
	Browser bool `yaml:"browser"`
}

// PDFToTextConfig locates the pdftotext binary.
type PDFToTextConfig struct {
	Path string `yaml:"path"`
}

// GeminiConfig configures the ask command.
type GeminiConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`
}

// SyncConfig configures the sync command.
type SyncConfig struct {
	MaxAge    string `yaml:"max_age"`
	FirstYear int    `yaml:"first_year"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DBPath: defaultDBPath(),
		Site: SiteConfig{
			BaseURL:     DefaultBaseURL,
			Timeout:     "30s",
			DownloadRPS: 2,
		},
		PDFToText: PDFToTextConfig{Path: "pdftotext"},
		Gemini:    GeminiConfig{Model: gemini.DefaultModel},
		Sync: SyncConfig{
			MaxAge:    "24h",
			FirstYear: DefaultFirstYear,
		},
		IDScheme: string(penalty.IDSchemePositional),
		LogLevel: "warn",
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, penalty.Errorf(penalty.EINVALID, "invalid config file %s: %v", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PENALTY_DB"); path != "" {
		c.DBPath = path
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
}

// Validate returns an error if a setting cannot be used.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return penalty.Errorf(penalty.EINVALID, "config: db_path required")
	}
	if _, err := parseDuration("site.timeout", c.Site.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("sync.max_age", c.Sync.MaxAge); err != nil {
		return err
	}
	if c.Site.DownloadRPS < 0 {
		return penalty.Errorf(penalty.EINVALID, "config: site.download_rps must not be negative")
	}
	if c.Sync.FirstYear <= 0 {
		return penalty.Errorf(penalty.EINVALID, "config: sync.first_year must be positive")
	}
	if _, err := penalty.ParseIDScheme(c.IDScheme); err != nil {
		return err
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Timeout returns the page fetch timeout.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration("site.timeout", c.Site.Timeout)
	return d
}

// MaxAge returns how long a synchronization stays fresh.
func (c *Config) MaxAge() time.Duration {
	d, _ := parseDuration("sync.max_age", c.Sync.MaxAge)
	return d
}

// StateFile returns where the last synchronization marker is kept.
// Defaults to a file next to the database.
func (c *Config) StateFile() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	return filepath.Join(filepath.Dir(c.DBPath), "last_update.json")
}

// Scheme returns the configured record ID scheme.
func (c *Config) Scheme() penalty.IDScheme {
	scheme, _ := penalty.ParseIDScheme(c.IDScheme)
	return scheme
}

// parseDuration parses a duration setting. An empty value is zero.
func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, penalty.Errorf(penalty.EINVALID, "config: invalid %s %q", name, s)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, penalty.Errorf(penalty.EINVALID, "config: invalid log_level %q", s)
	}
	return level, nil
}

func defaultConfigPath() string {
	if path := os.Getenv("PENALTY_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "penalty.yaml"
	}
	return filepath.Join(home, ".penalty", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "penalty.db"
	}
	return filepath.Join(home, ".penalty", "penalty.db")
}
