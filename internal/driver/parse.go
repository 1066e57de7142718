package driver

import (
	"dtl/internal/ast"
	"dtl/internal/diag"
	"dtl/internal/parser"
	"dtl/internal/source"
)

const defaultMaxDiagnostics = 100

// ParseOptions configures a single-file parse.
type ParseOptions struct {
	MaxDiagnostics int
	// KnownFilters включает проверку внешних фильтров; пустой список её выключает
	KnownFilters []string
}

func (o ParseOptions) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return defaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Nodes   []ast.Node
	Bag     *diag.Bag
	// Err - первая ошибка разбора; Nodes в этом случае nil
	Err error
}

// Parse loads path and parses it. Parse errors are reported in the result's
// Bag and Err; the returned error is reserved for I/O failures.
func Parse(path string, opts ParseOptions) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return parseFile(fs, fs.Get(fileID), opts), nil
}

// ParseSource parses an in-memory template (stdin, editor buffers, tests).
func ParseSource(name string, content []byte, opts ParseOptions) *ParseResult {
	fs := source.NewFileSet()
	return parseFile(fs, fs.Get(fs.AddVirtual(name, content)), opts)
}

func parseFile(fs *source.FileSet, file *source.File, opts ParseOptions) *ParseResult {
	bag := diag.NewBag(opts.maxDiagnostics())
	nodes, err := parser.Parse(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err == nil {
		if known := NewFilterSet(opts.KnownFilters); known != nil {
			for _, d := range LintFilters(file, nodes, known) {
				bag.Add(d)
			}
		}
	}
	bag.Sort()
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Nodes:   nodes,
		Bag:     bag,
		Err:     err,
	}
}
