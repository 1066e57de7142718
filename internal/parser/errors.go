package parser

import (
	"fmt"

	"dtl/internal/diag"
	"dtl/internal/lexer"
	"dtl/internal/source"
)

// ErrorKind classifies parse failures.
type ErrorKind uint8

const (
	// Lex wraps an expression lexing error; see Error.Unwrap.
	Lex ErrorKind = iota + 1
	// EmptyVariable: `{{ }}` with no variable path.
	EmptyVariable
	// MissingArgument: a filter that requires an argument has none.
	MissingArgument
	// UnexpectedArgument: a filter that takes no argument has one.
	UnexpectedArgument
	// InvalidNumber: a numeric argument is neither an integer nor a float.
	InvalidNumber
	// UnsupportedTag: block tags other than verbatim have no grammar yet.
	UnsupportedTag
)

var errorKindNames = [...]string{
	Lex:                "Lex",
	EmptyVariable:      "EmptyVariable",
	MissingArgument:    "MissingArgument",
	UnexpectedArgument: "UnexpectedArgument",
	InvalidNumber:      "InvalidNumber",
	UnsupportedTag:     "UnsupportedTag",
}

func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the first failure of a parse. Lexer failures are wrapped with Kind == Lex.
type Error struct {
	Kind ErrorKind
	Span source.Span
	// Filter is the name span of the filter involved, when there is one.
	Filter source.Span
	lex    *lexer.Error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Lex:
		return e.lex.Error()
	case EmptyVariable:
		return "Empty variable tag"
	case MissingArgument:
		return "Expected an argument"
	case UnexpectedArgument:
		return "Unexpected argument"
	case InvalidNumber:
		return "Invalid numeric literal"
	case UnsupportedTag:
		return "Block tags are not supported"
	default:
		return "parse error"
	}
}

func (e *Error) Unwrap() error {
	if e.lex == nil {
		return nil
	}
	return e.lex
}

func wrapLex(err error) *Error {
	lexErr, ok := err.(*lexer.Error)
	if !ok {
		panic(fmt.Sprintf("parser: unexpected lexer error %T", err))
	}
	return &Error{Kind: Lex, Span: lexErr.Span, lex: lexErr}
}

var lexCodes = map[lexer.ErrorKind]diag.Code{
	lexer.LeadingUnderscore:          diag.LexLeadingUnderscore,
	lexer.IncompleteString:           diag.LexIncompleteString,
	lexer.IncompleteTranslatedString: diag.LexIncompleteTranslatedString,
	lexer.MissingTranslatedString:    diag.LexMissingTranslatedString,
	lexer.InvalidRemainder:           diag.LexInvalidRemainder,
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case Lex:
		return lexCodes[e.lex.Kind]
	case EmptyVariable:
		return diag.SynEmptyVariable
	case MissingArgument:
		return diag.SynMissingArgument
	case UnexpectedArgument:
		return diag.SynUnexpectedArgument
	case InvalidNumber:
		return diag.SynInvalidNumber
	case UnsupportedTag:
		return diag.SynUnsupportedTag
	default:
		return diag.UnknownCode
	}
}

// Diagnostic converts the error into an error diagnostic with notes and fixes
// where a mechanical correction exists.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code(), e.Span, e.Error())
	switch e.Kind {
	case EmptyVariable:
		d = d.WithFix("remove the empty variable", diag.FixEdit{Span: e.Span})
	case MissingArgument:
		d = d.WithFix("add an argument", diag.FixEdit{Span: e.Span.ZeroideToEnd(), NewText: `:""`})
	case UnexpectedArgument:
		d = d.WithNote(e.Filter, "this filter takes no argument")
		// аргумент всегда идёт сразу после ':'
		colon := source.Span{File: e.Span.File, Start: e.Span.Start - 1, End: e.Span.End}
		d = d.WithFix("remove the argument", diag.FixEdit{Span: colon})
	case UnsupportedTag:
		d = d.WithNote(e.Span, "only {% verbatim %} blocks are understood")
	}
	return d
}
