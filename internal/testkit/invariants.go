// Package testkit holds invariant checkers shared by package tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"dtl/internal/ast"
	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

// CheckTokenPartition verifies that structural tokens cover the file exactly:
// 1) the first token starts at 0 and each next one starts where the previous ended
// 2) no token is empty
// 3) the last token ends at len(content)
func CheckTokenPartition(sf *source.File, toks []token.Token) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var pos uint32
	for i, tok := range toks {
		if tok.Span.File != sf.ID {
			return fmt.Errorf("token %d: file mismatch: got=%d want=%d", i, tok.Span.File, sf.ID)
		}
		if tok.Span.Start != pos {
			return fmt.Errorf("token %d: starts at %d, previous ended at %d", i, tok.Span.Start, pos)
		}
		if tok.Span.Empty() {
			return fmt.Errorf("token %d: empty span %v", i, tok.Span)
		}
		if tok.Kind.Delimited() && tok.Span.Len() < 4 {
			return fmt.Errorf("token %d: %v shorter than its delimiters", i, tok.Kind)
		}
		pos = tok.Span.End
	}
	if pos != lenContent {
		return fmt.Errorf("tokens end at %d, content has %d bytes", pos, lenContent)
	}
	return nil
}

// CheckNodeSpans verifies that every node of a parsed template points into
// the file, that a filter chain reads left to right, and that each argument
// follows its filter name.
func CheckNodeSpans(sf *source.File, nodes []ast.Node) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	whole := sf.Span()
	var prevEnd uint32
	for i, n := range nodes {
		base, filters := ast.Unchain(n)
		sp := ast.SpanOf(base)
		if !whole.Contains(sp) {
			return fmt.Errorf("node %d: span %v outside file %v", i, sp, whole)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("node %d: starts at %d before previous node end %d", i, sp.Start, prevEnd)
		}
		if _, isText := base.(ast.Text); !isText && sp.Empty() {
			return fmt.Errorf("node %d: empty %v span", i, base.Kind())
		}
		last := sp.End
		for j, f := range filters {
			if f.Span.Start < last || !whole.Contains(f.Span) {
				return fmt.Errorf("node %d filter %d: name span %v out of order (after %d)", i, j, f.Span, last)
			}
			last = f.Span.End
			if f.Arg == nil {
				continue
			}
			if f.Arg.Span.Start <= f.Span.End || !f.Arg.Span.Contains(f.Arg.Content) {
				return fmt.Errorf("node %d filter %d: argument span %v invalid", i, j, f.Arg.Span)
			}
			last = f.Arg.Span.End
		}
		prevEnd = max(sp.End, last)
	}
	return nil
}

// CheckTextNodes verifies that Text nodes are exactly the Text tokens a fresh
// lexer produces outside of comments, so slicing them reproduces the literal
// parts of the template.
func CheckTextNodes(sf *source.File, nodes []ast.Node) error {
	var want []source.Span
	for tok := range lexer.New(sf).Tokens() {
		if tok.Kind == token.Text {
			want = append(want, tok.Span)
		}
	}
	var got []source.Span
	for _, n := range nodes {
		if t, ok := n.(ast.Text); ok {
			got = append(got, t.Span)
		}
	}
	if len(got) != len(want) {
		return fmt.Errorf("got %d text nodes, lexer produced %d text tokens", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("text node %d: span %v, token span %v", i, got[i], want[i])
		}
	}
	return nil
}
