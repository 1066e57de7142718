package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dtl/internal/diagfmt"
	"dtl/internal/driver"
	"dtl/internal/observ"
	"dtl/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] template.html|directory",
	Short: "Parse templates and print the node list",
	Long: `Parse builds the node list of a template (or of every template in a
directory) and prints it. Parsing stops at the first error of each file`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|tree|json|yaml)")
	parseCmd.Flags().Int("jobs", 0, "max parallel workers for directories (0=auto)")
}

func runParse(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "tree", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	timer := observ.NewTimer()

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	var failed bool
	if st.IsDir() {
		failed, err = parseDirectory(cmd, s, target, format, timer)
	} else {
		failed, err = parseSingleFile(cmd, s, target, format, timer)
	}
	if err != nil {
		return err
	}
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if failed {
		return exitError{code: 1}
	}
	return nil
}

func parseSingleFile(cmd *cobra.Command, s *settings, path, format string, timer *observ.Timer) (bool, error) {
	var (
		res *driver.ParseResult
		err error
	)
	timer.Measure("parse", func() string {
		res, err = driver.Parse(path, s.parseOptions())
		return path
	})
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}

	// Диагностики в stderr, дерево в stdout
	if res.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, s.prettyOpts(os.Stderr))
	}
	if res.Err != nil {
		return true, nil
	}
	return false, formatNodes(cmd.OutOrStdout(), format, res.FileSet, []driver.ParseDirResult{{
		Path:   path,
		FileID: res.File.ID,
		Nodes:  res.Nodes,
	}}, true)
}

func parseDirectory(cmd *cobra.Command, s *settings, dir, format string, timer *observ.Timer) (bool, error) {
	jobs, err := s.jobs(cmd)
	if err != nil {
		return false, err
	}
	var (
		fileSet *source.FileSet
		results []driver.ParseDirResult
	)
	timer.Measure("parse dir", func() string {
		fileSet, results, err = driver.ParseDir(cmd.Context(), dir, s.parseOptions(), s.dirOptions(), jobs)
		return fmt.Sprintf("%d files", len(results))
	})
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", dir, err)
	}

	failed := false
	parsed := make([]driver.ParseDirResult, 0, len(results))
	for _, r := range results {
		if r.Bag != nil && r.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, r.Bag, fileSet, s.prettyOpts(os.Stderr))
		}
		if r.Err != nil {
			failed = true
			continue
		}
		parsed = append(parsed, r)
	}
	return failed, formatNodes(cmd.OutOrStdout(), format, fileSet, parsed, false)
}

// formatNodes prints successfully parsed files. For a directory json and yaml
// emit one array, pretty output gets a header per file.
func formatNodes(w io.Writer, format string, fileSet *source.FileSet, results []driver.ParseDirResult, single bool) error {
	switch format {
	case "json", "yaml":
		if single && len(results) == 1 {
			if format == "json" {
				return diagfmt.FormatNodesJSON(w, results[0].Nodes, fileSet, results[0].FileID)
			}
			return diagfmt.FormatNodesYAML(w, results[0].Nodes, fileSet, results[0].FileID)
		}
		docs := make([]diagfmt.TemplateOutput, 0, len(results))
		for _, r := range results {
			docs = append(docs, diagfmt.BuildTemplateOutput(r.Nodes, fileSet, r.FileID))
		}
		if format == "json" {
			return diagfmt.FormatTemplatesJSON(w, docs)
		}
		return diagfmt.FormatTemplatesYAML(w, docs)
	case "tree":
		for _, r := range results {
			if err := diagfmt.FormatNodesTree(w, r.Nodes, fileSet, r.FileID); err != nil {
				return err
			}
		}
	default:
		for i, r := range results {
			if !single {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "== %s ==\n", fileSet.Get(r.FileID).FormatPath("auto", fileSet.BaseDir()))
			}
			if err := diagfmt.FormatNodesPretty(w, r.Nodes, fileSet, r.FileID); err != nil {
				return err
			}
		}
	}
	return nil
}
