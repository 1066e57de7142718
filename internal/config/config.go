// Package config loads project settings from dtl.toml or dtl.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are probed in order in every directory during discovery.
var FileNames = []string{"dtl.toml", "dtl.yaml", "dtl.yml"}

type Config struct {
	Templates TemplatesConfig `toml:"templates" yaml:"templates"`
	Filters   FiltersConfig   `toml:"filters" yaml:"filters"`
	Output    OutputConfig    `toml:"output" yaml:"output"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Jobs      int             `toml:"jobs" yaml:"jobs"`

	// Path - файл, из которого загружена конфигурация; пусто для значений по умолчанию
	Path string `toml:"-" yaml:"-"`
}

type TemplatesConfig struct {
	Extensions []string `toml:"extensions" yaml:"extensions"`
	Exclude    []string `toml:"exclude" yaml:"exclude"`
}

type FiltersConfig struct {
	// Known - фильтры, зарегистрированные приложением; пусто выключает проверку
	Known []string `toml:"known" yaml:"known"`
}

type OutputConfig struct {
	Color          string `toml:"color" yaml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics" yaml:"max_diagnostics"`
	PathMode       string `toml:"path_mode" yaml:"path_mode"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Default returns the built-in settings used when no file is found.
func Default() Config {
	return Config{
		Templates: TemplatesConfig{Extensions: []string{".html", ".txt", ".dtl"}},
		Output: OutputConfig{
			Color:          "auto",
			MaxDiagnostics: 100,
			PathMode:       "auto",
		},
		Cache: CacheConfig{Enabled: true},
	}
}

// Find walks from startDir up to the filesystem root and returns the first
// config file it meets.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest config file above startDir, or Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path; the format follows the extension. Keys absent from the
// file keep their default values, unknown keys are an error.
func Load(path string) (Config, error) {
	// #nosec G304 -- path comes from discovery or --config
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(content), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color must be auto|on|off, got %q", c.Output.Color)
	}
	switch c.Output.PathMode {
	case "auto", "absolute", "relative", "basename":
	default:
		return fmt.Errorf("output.path_mode must be auto|absolute|relative|basename, got %q", c.Output.PathMode)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("output.max_diagnostics must not be negative")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	for _, ext := range c.Templates.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("templates.extensions: %q must start with a dot", ext)
		}
	}
	for _, pattern := range c.Templates.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("templates.exclude: bad pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// CacheDir returns the configured cache directory, relative paths resolved
// against the config file.
func (c *Config) CacheDir() string {
	if c.Cache.Dir == "" || filepath.IsAbs(c.Cache.Dir) || c.Path == "" {
		return c.Cache.Dir
	}
	return filepath.Join(filepath.Dir(c.Path), c.Cache.Dir)
}
