package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dtl/internal/diagfmt"
	"dtl/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] template.html",
	Short: "Tokenize a template",
	Long: `Tokenize splits a template into text, variable, tag and comment tokens.
With --expr the inside of every {{ }} is split into expression tokens too`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("expr", false, "also lex variable expressions")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	expr, err := cmd.Flags().GetBool("expr")
	if err != nil {
		return fmt.Errorf("failed to get expr flag: %w", err)
	}

	result, err := driver.Tokenize(filePath)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	opts := diagfmt.TokenOpts{Expr: expr}
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet, opts)
	case "json":
		return diagfmt.FormatTokensJSON(out, result.Tokens, result.FileSet, opts)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
