package token

import (
	"dtl/internal/source"
)

// Token is one piece of the structural token stream.
type Token struct {
	Kind Kind
	Span source.Span
}

// Inner returns the span without delimiters for Variable/Tag/Comment.
// Text tokens return their own span.
func (t Token) Inner() source.Span {
	if !t.Kind.Delimited() {
		return t.Span
	}
	return t.Span.Shrink(2, 2)
}

// ExprToken is a token of a variable expression.
type ExprToken struct {
	Kind ExprKind
	// Span covers the whole literal, e.g. `'foo'` or `_('foo')`.
	Span source.Span
	// Content is the payload: Span without quotes and the translation marker.
	Content source.Span
}
