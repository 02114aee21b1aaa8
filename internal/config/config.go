// Package config loads and validates the frontpage configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Archive contains configuration for the newspaper archive API.
type Archive struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	KeyFile string `toml:"key_file"`
}

// FrontPage contains configuration for the front-page document host.
type FrontPage struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// Journal contains configuration for the journaling tool.
type Journal struct {
	Binary         string `toml:"binary"`
	DefaultJournal string `toml:"default_journal"`
	BrandTag       string `toml:"brand_tag"`
}

// Files locates the data files consumed by the pipeline.
type Files struct {
	EventsFile   string `toml:"events_file"`
	RegistryFile string `toml:"registry_file"`
}

// Batch contains settings for the range/month/year/events drivers.
type Batch struct {
	SleepSeconds  int `toml:"sleep_seconds"`
	EventAttempts int `toml:"event_attempts"`
	EventDelay    int `toml:"event_delay_seconds"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for frontpage.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Archive   Archive   `toml:"archive"`
	FrontPage FrontPage `toml:"frontpage"`
	Journal   Journal   `toml:"journal"`
	Files     Files     `toml:"files"`
	Batch     Batch     `toml:"batch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/frontpage/config.toml")
}

// SampleConfig returns the commented sample configuration file content.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Archive.KeyFile, err = expandPath(c.Archive.KeyFile); err != nil {
		return err
	}
	if c.Files.EventsFile, err = expandPath(c.Files.EventsFile); err != nil {
		return err
	}
	if c.Files.RegistryFile, err = expandPath(c.Files.RegistryFile); err != nil {
		return err
	}
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")
	c.FrontPage.BaseURL = strings.TrimRight(strings.TrimSpace(c.FrontPage.BaseURL), "/")
	c.Journal.Binary = strings.TrimSpace(c.Journal.Binary)
	return nil
}

// Validate checks invariants that would otherwise surface mid-run.
func (c *Config) Validate() error {
	if c.Paths.StagingDir == "" {
		return errors.New("config: staging_dir must not be empty")
	}
	if c.Archive.BaseURL == "" {
		return errors.New("config: archive base_url must not be empty")
	}
	if c.FrontPage.BaseURL == "" {
		return errors.New("config: frontpage base_url must not be empty")
	}
	if c.Journal.Binary == "" {
		return errors.New("config: journal binary must not be empty")
	}
	if c.Batch.SleepSeconds < 0 {
		return fmt.Errorf("config: sleep_seconds must not be negative (got %d)", c.Batch.SleepSeconds)
	}
	if c.Batch.EventAttempts < 1 {
		return fmt.Errorf("config: event_attempts must be at least 1 (got %d)", c.Batch.EventAttempts)
	}
	return nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
