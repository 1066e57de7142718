// Package diag defines the diagnostic model shared by the lexer, parser,
// lint and driver layers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form: LEX1xxx for expression lexing, SYN2xxx for parsing, SEM3xxx for
//     checks over the AST, IO4xxx for loading failures.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages.
//   - Fixes – optional text edits that resolve the problem.
//
// # Emitting diagnostics
//
// Phases emit through a Reporter so that storage stays pluggable. BagReporter
// collects into a Bag, which supports sorting, deduplication and merging.
// Rendering lives in internal/diagfmt; this package does no formatting beyond
// the golden/short one-line forms used by tests and `dtl check`.
//
// Parsing is fail-fast: the parser reports at most one error per template.
// Warnings from the filter lint may accompany it.
package diag
