package token

// Kind represents the category of a structural token.
type Kind uint8

const (
	// Text is literal template text, including unterminated constructs.
	Text Kind = iota
	// Variable is a `{{ ... }}` construct.
	Variable
	// Tag is a `{% ... %}` construct.
	Tag
	// Comment is a `{# ... #}` construct.
	Comment
)

var kindNames = [...]string{
	Text:     "Text",
	Variable: "Variable",
	Tag:      "Tag",
	Comment:  "Comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Delimited reports whether tokens of this kind are wrapped by two-byte delimiters.
func (k Kind) Delimited() bool {
	return k == Variable || k == Tag || k == Comment
}

// ExprKind represents the category of a token inside a variable expression.
type ExprKind uint8

const (
	// ExprVariable is a dotted variable path, e.g. `foo.bar`.
	ExprVariable ExprKind = iota
	// ExprFilter is a filter name after `|`.
	ExprFilter
	// ExprText is a quoted string argument.
	ExprText
	// ExprTranslatedText is a `_("...")` argument.
	ExprTranslatedText
	// ExprNumeric is an unvalidated numeric literal.
	ExprNumeric
)

var exprKindNames = [...]string{
	ExprVariable:       "Variable",
	ExprFilter:         "Filter",
	ExprText:           "Text",
	ExprTranslatedText: "TranslatedText",
	ExprNumeric:        "Numeric",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "ExprKind(?)"
}

// IsArgument reports whether a token of this kind can appear after `:`.
func (k ExprKind) IsArgument() bool {
	return k != ExprFilter
}
