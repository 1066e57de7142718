package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dtl/internal/lsp"
	"dtl/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	Long: `Lsp serves template diagnostics to editors (full document sync).
Without --config the nearest dtl.toml/dtl.yaml above the workspace root is used`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	server := lsp.NewServer(lsp.Options{
		Version:        version.Version,
		Parse:          s.parseOptions(),
		DiscoverConfig: explicit == "",
	})
	logger.Infof("starting language server")
	return server.RunStdio()
}
