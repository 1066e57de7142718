package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dtl/internal/diag"
	"dtl/internal/diagfmt"
	"dtl/internal/driver"
	"dtl/internal/observ"
	"dtl/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Check templates and report diagnostics",
	Long: `Check parses every template under the given paths (default: the current
directory), lints filter names against filters.known and reports diagnostics.
Exits with status 1 when any template has errors`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	checkCmd.Flags().Bool("no-cache", false, "ignore and do not update the disk cache")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	jobs, err := s.jobs(cmd)
	if err != nil {
		return err
	}
	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	timer := observ.NewTimer()
	opts := driver.CheckOptions{
		ParseOptions: s.parseOptions(),
		Dir:          s.dirOptions(),
		Jobs:         jobs,
		BaseDir:      baseDir,
		Timer:        timer,
	}
	if s.cfg.Cache.Enabled && !noCache {
		opts.Cache = openCache(s)
	}

	files, err := driver.ExpandPaths(paths, opts.Dir)
	if err != nil {
		return err
	}

	var (
		fileSet *source.FileSet
		results []driver.CheckResult
	)
	if shouldUseTUI(mode, len(files)) {
		fileSet, results, err = runCheckWithUI(cmd.Context(), "dtl check", files, paths, opts)
	} else {
		fileSet, results, err = driver.Check(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}

	bag := driver.Collect(results, s.maxDiagnostics)
	out := cmd.OutOrStdout()
	if err := writeCheckOutput(out, format, bag, fileSet, s); err != nil {
		return err
	}
	if !s.quiet && format == "pretty" {
		fmt.Fprintln(cmd.ErrOrStderr(), checkSummary(results, bag))
	}
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	for i := range results {
		if results[i].Failed() {
			return exitError{code: 1}
		}
	}
	return nil
}

// openCache opens cache.dir from the config or the user cache directory.
// A cache that cannot be opened only disables caching.
func openCache(s *settings) *driver.DiskCache {
	var (
		cache *driver.DiskCache
		err   error
	)
	if dir := s.cfg.CacheDir(); dir != "" {
		cache, err = driver.OpenDiskCacheAt(dir)
	} else {
		cache, err = driver.OpenDiskCache("dtl")
	}
	if err != nil {
		logger.Warningf("disk cache disabled: %v", err)
		return nil
	}
	logger.Debugf("disk cache at %s", cache.Dir())
	return cache
}

func writeCheckOutput(w io.Writer, format string, bag *diag.Bag, fileSet *source.FileSet, s *settings) error {
	switch format {
	case "json":
		return diagfmt.JSON(w, bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	case "short":
		items := bag.Items()
		diags := make([]*diag.Diagnostic, len(items))
		for i := range items {
			diags[i] = &items[i]
		}
		text := diag.FormatShortDiagnostics(diags, fileSet)
		if text == "" {
			return nil
		}
		_, err := io.WriteString(w, text+"\n")
		return err
	default:
		diagfmt.Pretty(w, bag, fileSet, s.prettyOpts(os.Stdout))
		return nil
	}
}

// checkSummary renders e.g. "checked 3 files (1 cached): 1 error, 0 warnings".
func checkSummary(results []driver.CheckResult, bag *diag.Bag) string {
	cached := 0
	for i := range results {
		if results[i].Cached {
			cached++
		}
	}
	errs, warnings := bag.Count(diag.SevError), bag.Count(diag.SevWarning)
	summary := fmt.Sprintf("checked %s", plural(len(results), "file"))
	if cached > 0 {
		summary += fmt.Sprintf(" (%d cached)", cached)
	}
	return summary + fmt.Sprintf(": %s, %s", plural(errs, "error"), plural(warnings, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

