package driver

import (
	"fmt"
	"slices"
	"strings"

	"dtl/internal/ast"
	"dtl/internal/diag"
	"dtl/internal/source"
)

// FilterSet holds the names of filters registered by the host application.
type FilterSet map[string]struct{}

// NewFilterSet returns nil for an empty list, which disables the lint.
func NewFilterSet(names []string) FilterSet {
	if len(names) == 0 {
		return nil
	}
	set := make(FilterSet, len(names))
	for _, name := range names {
		set[strings.TrimSpace(name)] = struct{}{}
	}
	return set
}

func (s FilterSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the set sorted.
func (s FilterSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LintFilters warns about external filters missing from known. Built-in
// filters are resolved by the parser and never reported.
func LintFilters(file *source.File, nodes []ast.Node, known FilterSet) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range ast.Filters(nodes) {
		if f.Type != ast.FilterExternal {
			continue
		}
		name := strings.TrimSpace(f.Name(file))
		if known.Has(name) {
			continue
		}
		out = append(out, diag.NewWarning(diag.SemaUnknownFilter, f.Span, fmt.Sprintf("Unknown filter %q", name)))
	}
	return out
}
