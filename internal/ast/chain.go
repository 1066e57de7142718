package ast

import (
	"slices"

	"dtl/internal/source"
)

// Unchain splits a node into its innermost operand and the filters applied
// to it, first applied first. Non-filter nodes return themselves and no filters.
func Unchain(n Node) (Node, []*Filter) {
	var filters []*Filter
	for {
		f, ok := n.(*Filter)
		if !ok {
			break
		}
		filters = append(filters, f)
		n = f.Left
	}
	slices.Reverse(filters)
	return n, filters
}

// Chain builds a left-nested filter chain over base; Left fields of the
// given filters are overwritten. Returns base when filters is empty.
func Chain(base Node, filters ...*Filter) Node {
	acc := base
	for _, f := range filters {
		f.Left = acc
		acc = f
	}
	return acc
}

// Depth returns the number of filters applied to the node.
func Depth(n Node) int {
	depth := 0
	for f, ok := n.(*Filter); ok; f, ok = f.Left.(*Filter) {
		depth++
	}
	return depth
}

// Extent returns the span from the start of the innermost operand to the end
// of the last filter or its argument.
func Extent(n Node) source.Span {
	base, filters := Unchain(n)
	span := SpanOf(base)
	for _, f := range filters {
		span = span.Cover(f.Span)
		if f.Arg != nil {
			span = span.Cover(f.Arg.Span)
		}
	}
	return span
}

// Filters returns the filters of all nodes in source order.
func Filters(nodes []Node) []*Filter {
	var out []*Filter
	for _, n := range nodes {
		_, fs := Unchain(n)
		out = append(out, fs...)
	}
	return out
}
