package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"dtl/internal/diag"
	"dtl/internal/driver"
)

const diagnosticSource = "dtl"

// buildDiagnostics parses text and converts the result into LSP diagnostics.
// The result is never nil so an empty list clears stale markers in the editor.
func buildDiagnostics(uri, text string, opts driver.ParseOptions) []protocol.Diagnostic {
	name := uriToPath(uri)
	if name == "" {
		name = uri
	}
	res := driver.ParseSource(name, []byte(text), opts)

	out := make([]protocol.Diagnostic, 0, res.Bag.Len())
	for _, d := range res.Bag.Items() {
		out = append(out, toProtocolDiagnostic(uri, res, d))
	}
	return out
}

func toProtocolDiagnostic(uri string, res *driver.ParseResult, d diag.Diagnostic) protocol.Diagnostic {
	severity := toProtocolSeverity(d.Severity)
	source := diagnosticSource
	pd := protocol.Diagnostic{
		Range:    rangeForSpan(res.File, d.Primary),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   &source,
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: rangeForSpan(res.File, note.Span)},
			Message:  note.Msg,
		})
	}
	return pd
}

func toProtocolSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}
