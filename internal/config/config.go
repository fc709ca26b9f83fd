// Package config loads and validates the site configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/xerrors"
	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// Config is the full site configuration loaded from config.yaml.
// String fields support ${VAR} expansion from the environment; a .env file
// next to the config is loaded first when present.
type Config struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
	Timezone    string `yaml:"timezone"`

	// URL is the public base URL; Root the path prefix under it.
	URL  string `yaml:"url"`
	Root string `yaml:"root"`

	SourceDir  string `yaml:"source_dir"`
	OutputDir  string `yaml:"output_dir"`
	PluginsDir string `yaml:"plugins_dir"`
	ThemeDir   string `yaml:"theme_dir"`
	Theme      string `yaml:"theme"`

	PerPage int `yaml:"per_page"`

	Feed   FeedConfig   `yaml:"feed"`
	Search SearchConfig `yaml:"search"`
	Watch  WatchConfig  `yaml:"watch"`
	Server ServerConfig `yaml:"server"`
	Deploy DeployConfig `yaml:"deploy"`
}

// FeedConfig controls RSS/Atom emission. Enable is tri-state so the zero
// config still emits feeds; only an explicit `enable: false` turns them off.
type FeedConfig struct {
	Enable *bool `yaml:"enable"`
	Limit  int   `yaml:"limit"`
}

// Enabled reports whether feed stages run.
func (f FeedConfig) Enabled() bool { return f.Enable == nil || *f.Enable }

// SearchConfig controls the search index stage.
type SearchConfig struct {
	Enable *bool `yaml:"enable"`
	// FullContent indexes the whole rendered text instead of excerpts.
	FullContent bool `yaml:"full_content"`
}

// Enabled reports whether the search index stage runs.
func (s SearchConfig) Enabled() bool { return s.Enable == nil || *s.Enable }

// WatchConfig tunes the rebuild debouncer and optional scheduled rebuilds.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	MaxDelay time.Duration `yaml:"max_delay"`
	// Schedule is a cron expression for periodic full rebuilds; empty disables.
	Schedule string `yaml:"schedule"`
}

// ServerConfig tunes the preview server.
type ServerConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// DeployConfig describes the git deploy target for the output directory.
type DeployConfig struct {
	Type    string `yaml:"type"`
	Repo    string `yaml:"repo"`
	Branch  string `yaml:"branch"`
	Message string `yaml:"message"`
}

// Load reads the configuration file, expands environment variables and
// applies defaults.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CategoryConfig, xerrors.SeverityFatal,
			"read configuration file").WithContext("path", path)
	}

	expanded := os.ExpandEnv(string(raw))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CategoryConfig, xerrors.SeverityFatal,
			"parse configuration file").WithContext("path", path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with all defaults applied, for `sitegen init`.
func Default() *Config {
	cfg := &Config{
		Title:  "My Site",
		Author: "author",
	}
	cfg.applyDefaults()
	return cfg
}

// Save writes the configuration as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryConfig, xerrors.SeverityError, "marshal configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(err, xerrors.CategoryFileSystem, xerrors.SeverityError,
			"write configuration file").WithContext("path", path)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.URL == "" {
		c.URL = "http://localhost:4000"
	}
	if c.Root == "" {
		c.Root = "/"
	}
	if c.SourceDir == "" {
		c.SourceDir = "source"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.PluginsDir == "" {
		c.PluginsDir = "plugins"
	}
	if c.ThemeDir == "" {
		c.ThemeDir = "themes"
	}
	if c.Theme == "" {
		c.Theme = "default"
	}
	if c.PerPage <= 0 {
		c.PerPage = 10
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = 20
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if c.Watch.MaxDelay <= 0 {
		c.Watch.MaxDelay = 5 * time.Second
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 4000
	}
	if c.Deploy.Branch == "" {
		c.Deploy.Branch = "gh-pages"
	}
	if c.Deploy.Message == "" {
		c.Deploy.Message = "Site updated"
	}
}

// Validate checks invariants defaults cannot repair.
func (c *Config) Validate() error {
	if c.Title == "" {
		return xerrors.ValidationError("site title is required")
	}
	if c.PerPage < 1 {
		return xerrors.ValidationError(fmt.Sprintf("per_page must be >= 1, got %d", c.PerPage))
	}
	if c.SourceDir == c.OutputDir {
		return xerrors.ValidationError("source_dir and output_dir must differ")
	}
	return nil
}

// Site returns the read-only view handed to plugins and templates.
func (c *Config) Site() model.Site {
	return model.Site{
		Title:       c.Title,
		Subtitle:    c.Subtitle,
		Description: c.Description,
		Author:      c.Author,
		Language:    c.Language,
		Timezone:    c.Timezone,
		URL:         c.URL,
		Root:        c.Root,
		Theme:       c.Theme,
		PerPage:     c.PerPage,
	}
}
