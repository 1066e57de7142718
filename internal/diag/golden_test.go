package diag

import (
	"testing"

	"dtl/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	page := fs.Add("/workspace/templates/page.html", []byte("a\n{{ _x }}\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaUnknownFilter,
			Message:  "unknown filter \"titel\"",
			Primary:  source.Span{File: page, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     LexLeadingUnderscore,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: page, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: page, Start: 5, End: 7}, Msg: "note line"},
			},
		},
	}

	expected := "error LEX1001 templates/page.html:1:1 first line second\n" +
		"warning SEM3001 templates/page.html:2:1 unknown filter \"titel\"\n" +
		"note LEX1001 templates/page.html:2:4 note line"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}

	short := "error LEX1001 templates/page.html:1:1 first line second\n" +
		"warning SEM3001 templates/page.html:2:1 unknown filter \"titel\""
	if got := FormatShortDiagnostics(diags, fs); got != short {
		t.Fatalf("unexpected short diagnostics:\n%s", got)
	}
}

func TestFormatSkipsUnknownFiles(t *testing.T) {
	fs := source.NewFileSet()
	diags := []*Diagnostic{{Severity: SevError, Code: SynEmptyVariable, Primary: source.Span{File: 7}}}
	if got := FormatShortDiagnostics(diags, fs); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
