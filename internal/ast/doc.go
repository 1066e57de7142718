// Package ast defines the syntax tree produced by the template parser.
//
// Node is a closed set of variants: Text, TranslatedText, Tag, Variable and
// *Filter. Consumers dispatch with a type switch over these five types.
// Nodes hold spans into the owning source.File and never copy template text;
// the file must outlive every node built from it.
//
// A filter chain `a|f|g` is a left-nested list, not a general tree:
// Filter(g, Left=Filter(f, Left=Variable(a))). Helpers in chain.go walk it
// iteratively.
package ast
