package ast

import (
	"fmt"
	"iter"
	"strings"

	"dtl/internal/source"
)

// NodeKind identifies the variant of a Node.
type NodeKind uint8

const (
	KindText NodeKind = iota
	KindTranslatedText
	KindTag
	KindVariable
	KindFilter
)

var nodeKindNames = [...]string{
	KindText:           "Text",
	KindTranslatedText: "TranslatedText",
	KindTag:            "Tag",
	KindVariable:       "Variable",
	KindFilter:         "Filter",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a top-level tree element or the left operand of a filter.
type Node interface {
	Kind() NodeKind
	node()
}

// Text is literal template text, or a string payload.
type Text struct {
	Span source.Span
}

func (Text) Kind() NodeKind { return KindText }
func (Text) node()          {}

// Content returns the text covered by the node.
func (t Text) Content(f *source.File) string { return f.Text(t.Span) }

// TranslatedText is the payload of a `_("...")` literal.
type TranslatedText struct {
	Span source.Span
}

func (TranslatedText) Kind() NodeKind { return KindTranslatedText }
func (TranslatedText) node()          {}

func (t TranslatedText) Content(f *source.File) string { return f.Text(t.Span) }

// Tag is reserved for block tags. The parser does not build it yet.
type Tag struct {
	Span source.Span
}

func (Tag) Kind() NodeKind { return KindTag }
func (Tag) node()          {}

// Variable is a dotted lookup path such as `user.profile.name`.
type Variable struct {
	Span source.Span
}

func (Variable) Kind() NodeKind { return KindVariable }
func (Variable) node()          {}

// Parts yields the path segments lazily.
func (v Variable) Parts(f *source.File) iter.Seq[string] {
	return strings.SplitSeq(f.Text(v.Span), ".")
}

// Path returns all path segments.
func (v Variable) Path(f *source.File) []string {
	return strings.Split(f.Text(v.Span), ".")
}

// FilterType is the validated flavour of a filter.
type FilterType uint8

const (
	// FilterExternal is any filter not known to the parser; its argument is optional and unchecked.
	FilterExternal FilterType = iota
	// FilterDefault requires an argument.
	FilterDefault
	// FilterLower takes no argument.
	FilterLower
)

var filterTypeNames = [...]string{
	FilterExternal: "External",
	FilterDefault:  "Default",
	FilterLower:    "Lower",
}

func (t FilterType) String() string {
	if int(t) < len(filterTypeNames) {
		return filterTypeNames[t]
	}
	return fmt.Sprintf("FilterType(%d)", uint8(t))
}

// Filter applies a named filter to Left.
// Span covers the filter name only.
// Arg is non-nil for FilterDefault, nil for FilterLower, either for FilterExternal.
type Filter struct {
	Span source.Span
	Left Node
	Type FilterType
	Arg  *Argument
}

func (*Filter) Kind() NodeKind { return KindFilter }
func (*Filter) node()          {}

// Name returns the filter name as written.
func (f *Filter) Name(file *source.File) string { return file.Text(f.Span) }

// SpanOf returns the node's own span. For a filter this is the name span.
func SpanOf(n Node) source.Span {
	switch n := n.(type) {
	case Text:
		return n.Span
	case TranslatedText:
		return n.Span
	case Tag:
		return n.Span
	case Variable:
		return n.Span
	case *Filter:
		return n.Span
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}
