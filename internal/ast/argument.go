package ast

import (
	"fmt"
	"math/big"

	"dtl/internal/source"
)

// ArgKind identifies the payload of an Argument.
type ArgKind uint8

const (
	ArgVariable ArgKind = iota
	ArgText
	ArgTranslatedText
	ArgInt
	ArgFloat
)

var argKindNames = [...]string{
	ArgVariable:       "Variable",
	ArgText:           "Text",
	ArgTranslatedText: "TranslatedText",
	ArgInt:            "Int",
	ArgFloat:          "Float",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return fmt.Sprintf("ArgKind(%d)", uint8(k))
}

// Argument is the operand after `filter:`.
type Argument struct {
	Kind ArgKind
	// Span covers the literal as written, quotes and `_( )` included.
	Span source.Span
	// Content is the payload span for Variable, Text and TranslatedText.
	Content source.Span
	Int     *big.Int // ArgInt
	Float   float64  // ArgFloat
}

// Variable returns the argument as a variable path. Valid for ArgVariable.
func (a *Argument) Variable() Variable { return Variable{Span: a.Content} }

// Text returns the string payload. Valid for ArgText and ArgTranslatedText.
func (a *Argument) Text() Text { return Text{Span: a.Content} }

// Value renders the payload for dumps: quoted strings, `_("...")`, numbers, paths.
func (a *Argument) Value(f *source.File) string {
	switch a.Kind {
	case ArgInt:
		return a.Int.String()
	case ArgFloat:
		return fmt.Sprintf("%g", a.Float)
	case ArgText:
		return fmt.Sprintf("%q", f.Text(a.Content))
	case ArgTranslatedText:
		return fmt.Sprintf("_(%q)", f.Text(a.Content))
	default:
		return f.Text(a.Content)
	}
}
