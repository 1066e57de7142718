package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dtl/internal/config"
	"dtl/internal/diagfmt"
	"dtl/internal/driver"
)

// settings merges the project config with command-line flags.
// Flags win only when set explicitly.
type settings struct {
	cfg            config.Config
	colorMode      string
	quiet          bool
	timings        bool
	maxDiagnostics int
	pathMode       diagfmt.PathMode
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debugf("config %s", cfg.Path)
	}
	return resolveSettings(cmd, cfg)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

func resolveSettings(cmd *cobra.Command, cfg config.Config) (*settings, error) {
	flags := cmd.Flags()
	s := &settings{
		cfg:            cfg,
		colorMode:      cfg.Output.Color,
		maxDiagnostics: cfg.Output.MaxDiagnostics,
	}
	var err error
	if flags.Changed("color") {
		if s.colorMode, err = flags.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	switch s.colorMode {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", s.colorMode)
	}
	if flags.Changed("max-diagnostics") {
		if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.pathMode, err = diagfmt.ParsePathMode(cfg.Output.PathMode); err != nil {
		return nil, err
	}
	return s, nil
}

// useColor resolves the colour mode for a particular output stream.
func (s *settings) useColor(f *os.File) bool {
	switch s.colorMode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

// jobs returns --jobs when given, the config value otherwise (0 = GOMAXPROCS).
func (s *settings) jobs(cmd *cobra.Command) (int, error) {
	if !cmd.Flags().Changed("jobs") {
		return s.cfg.Jobs, nil
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return 0, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs < 0 {
		return 0, fmt.Errorf("--jobs must not be negative")
	}
	return jobs, nil
}

func (s *settings) parseOptions() driver.ParseOptions {
	return driver.ParseOptions{
		MaxDiagnostics: s.maxDiagnostics,
		KnownFilters:   s.cfg.Filters.Known,
	}
}

func (s *settings) dirOptions() driver.DirOptions {
	return driver.DirOptions{
		Extensions: s.cfg.Templates.Extensions,
		Exclude:    s.cfg.Templates.Exclude,
	}
}

func (s *settings) prettyOpts(f *os.File) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     s.useColor(f),
		Context:   1,
		PathMode:  s.pathMode,
		ShowNotes: true,
		ShowFixes: !s.quiet,
	}
}
