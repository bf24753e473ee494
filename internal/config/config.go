// Package config loads the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// FileName is looked up in the project root.
const FileName = ".netlogo-intel.yaml"

// DefaultCacheDir is relative to the project root.
const DefaultCacheDir = ".netlogo-intel"

// ErrInvalidMode is returned by Validate for an unknown parse mode.
var ErrInvalidMode = errors.New("config: invalid mode")

// Config holds user-overridable analysis settings.
type Config struct {
	// Mode is the parse mode of plain source files: model, embedded or oneline.
	// .nlogo files are always parsed as models.
	Mode string `yaml:"mode"`

	// WidgetGlobals are extra interface globals, added to the ones found in
	// .nlogo interface sections.
	WidgetGlobals []string `yaml:"widget_globals"`

	// UnsupportedPrimitives are added to the catalog's built-in list.
	UnsupportedPrimitives []string `yaml:"unsupported_primitives"`

	// Ignore holds doublestar patterns relative to the project root.
	Ignore []string `yaml:"ignore"`

	Repair  RepairConfig  `yaml:"repair"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// RepairConfig tunes FixGeneratedCode.
type RepairConfig struct {
	WrapperName string `yaml:"wrapper_name"`
	// DropDelegatingProcedures defaults to true.
	DropDelegatingProcedures *bool `yaml:"drop_delegating_procedures"`
}

// CacheConfig controls the on-disk lint cache.
type CacheConfig struct {
	// Enabled defaults to true.
	Enabled *bool  `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Mode:   syntax.Model.String(),
		Repair: RepairConfig{WrapperName: repair.DefaultWrapperName},
		Cache:  CacheConfig{Dir: DefaultCacheDir},
	}
}

// Load reads a configuration file. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir reads FileName from dir. A missing file yields the defaults.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if _, ok := syntax.ParseMode(c.Mode); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("ignore pattern %q is malformed", pattern)
		}
	}
	return nil
}

// ParseMode returns the configured parse mode, model when invalid.
func (c *Config) ParseMode() syntax.Mode {
	m, _ := syntax.ParseMode(c.Mode)
	return m
}

// Catalog returns the default catalog extended with the configured
// unsupported primitives.
func (c *Config) Catalog() *primitives.Catalog {
	return primitives.Default().WithUnsupported(c.UnsupportedPrimitives)
}

// RepairOptions translates the repair section for cat.
func (c *Config) RepairOptions(cat *primitives.Catalog) repair.Options {
	opts := repair.DefaultOptions()
	opts.Catalog = cat
	if c.Repair.WrapperName != "" {
		opts.WrapperName = c.Repair.WrapperName
	}
	if c.Repair.DropDelegatingProcedures != nil {
		opts.DropDelegatingProcedures = *c.Repair.DropDelegatingProcedures
	}
	return opts
}

// CacheEnabled reports whether the lint cache is on, true unless disabled.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// CachePath returns the sqlite file of the lint cache for a project root.
func (c *Config) CachePath(root string) string {
	dir := c.Cache.Dir
	if dir == "" {
		dir = DefaultCacheDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Join(dir, "lint.db")
}
