package lexer

import (
	"fmt"

	"dtl/internal/source"
)

// ErrorKind classifies expression lexing failures.
type ErrorKind uint8

const (
	// LeadingUnderscore: a variable or attribute argument starts with `_`.
	LeadingUnderscore ErrorKind = iota + 1
	// IncompleteString: a quoted literal has no closing quote.
	IncompleteString
	// IncompleteTranslatedString: `_("...")` without the closing `)`.
	IncompleteTranslatedString
	// MissingTranslatedString: `_(` not followed by a quoted literal.
	MissingTranslatedString
	// InvalidRemainder: stray characters between an argument and the next `|`.
	InvalidRemainder
)

var errorMessages = [...]string{
	LeadingUnderscore:          "Variables and attributes may not begin with underscores",
	IncompleteString:           "Expected a complete string literal",
	IncompleteTranslatedString: "Expected a complete translation string",
	MissingTranslatedString:    "Expected a string literal within translation",
	InvalidRemainder:           "Could not parse the remainder",
}

var errorNames = [...]string{
	LeadingUnderscore:          "LeadingUnderscore",
	IncompleteString:           "IncompleteString",
	IncompleteTranslatedString: "IncompleteTranslatedString",
	MissingTranslatedString:    "MissingTranslatedString",
	InvalidRemainder:           "InvalidRemainder",
}

func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(errorNames) {
		return errorNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Message returns the human readable text for the kind.
func (k ErrorKind) Message() string {
	if k > 0 && int(k) < len(errorMessages) {
		return errorMessages[k]
	}
	return "lexer error"
}

// Error is an expression lexing failure with the offending span.
type Error struct {
	Kind ErrorKind
	Span source.Span
}

func (e *Error) Error() string {
	return e.Kind.Message()
}
