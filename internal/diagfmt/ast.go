package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"dtl/internal/ast"
	"dtl/internal/source"
)

// NodeOutput is the serialisable form of an ast.Node. Filters nest through Left.
type NodeOutput struct {
	Type       string          `json:"type" yaml:"type"`
	Span       source.Span     `json:"span" yaml:"span"`
	Text       string          `json:"text,omitempty" yaml:"text,omitempty"`
	FilterType string          `json:"filter_type,omitempty" yaml:"filter_type,omitempty"`
	Argument   *ArgumentOutput `json:"argument,omitempty" yaml:"argument,omitempty"`
	Left       *NodeOutput     `json:"left,omitempty" yaml:"left,omitempty"`
}

type ArgumentOutput struct {
	Kind    string      `json:"kind" yaml:"kind"`
	Span    source.Span `json:"span" yaml:"span"`
	Value   string      `json:"value" yaml:"value"`
	Content source.Span `json:"content" yaml:"content"`
}

// TemplateOutput is the root document of the JSON and YAML dumps.
type TemplateOutput struct {
	File  string       `json:"file" yaml:"file"`
	Nodes []NodeOutput `json:"nodes" yaml:"nodes"`
}

// BuildNodesOutput converts nodes without recursing over filter chains.
func BuildNodesOutput(nodes []ast.Node, file *source.File) []NodeOutput {
	out := make([]NodeOutput, 0, len(nodes))
	for _, n := range nodes {
		base, filters := ast.Unchain(n)
		acc := leafOutput(base, file)
		for _, f := range filters {
			left := acc
			acc = NodeOutput{
				Type:       ast.KindFilter.String(),
				Span:       f.Span,
				Text:       f.Name(file),
				FilterType: f.Type.String(),
				Left:       &left,
			}
			if f.Arg != nil {
				acc.Argument = &ArgumentOutput{
					Kind:    f.Arg.Kind.String(),
					Span:    f.Arg.Span,
					Value:   f.Arg.Value(file),
					Content: f.Arg.Content,
				}
			}
		}
		out = append(out, acc)
	}
	return out
}

func leafOutput(n ast.Node, file *source.File) NodeOutput {
	span := ast.SpanOf(n)
	return NodeOutput{Type: n.Kind().String(), Span: span, Text: file.Text(span)}
}

// BuildTemplateOutput wraps the nodes of one file into a TemplateOutput.
func BuildTemplateOutput(nodes []ast.Node, fs *source.FileSet, id source.FileID) TemplateOutput {
	file := fs.Get(id)
	return TemplateOutput{File: file.Path, Nodes: BuildNodesOutput(nodes, file)}
}

// FormatNodesJSON выводит дерево в JSON формате
func FormatNodesJSON(w io.Writer, nodes []ast.Node, fs *source.FileSet, id source.FileID) error {
	return encodeJSON(w, BuildTemplateOutput(nodes, fs, id))
}

// FormatNodesYAML выводит дерево в YAML формате
func FormatNodesYAML(w io.Writer, nodes []ast.Node, fs *source.FileSet, id source.FileID) error {
	return encodeYAML(w, BuildTemplateOutput(nodes, fs, id))
}

// FormatTemplatesJSON writes several files as one JSON array (parse of a directory).
func FormatTemplatesJSON(w io.Writer, docs []TemplateOutput) error {
	return encodeJSON(w, docs)
}

// FormatTemplatesYAML writes several files as one YAML sequence.
func FormatTemplatesYAML(w io.Writer, docs []TemplateOutput) error {
	return encodeYAML(w, docs)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func nodeLabel(n ast.Node, file *source.File, fs *source.FileSet) string {
	switch n := n.(type) {
	case *ast.Filter:
		label := fmt.Sprintf("Filter[%s] %s", n.Type, n.Name(file))
		if n.Arg != nil {
			label += fmt.Sprintf(" arg=%s:%s", n.Arg.Kind, n.Arg.Value(file))
		}
		return fmt.Sprintf("%s (span: %s)", label, formatSpan(n.Span, fs))
	case ast.Variable:
		return fmt.Sprintf("Variable %s (span: %s)", file.Text(n.Span), formatSpan(n.Span, fs))
	default:
		span := ast.SpanOf(n)
		return fmt.Sprintf("%s %q (span: %s)", n.Kind(), file.Text(span), formatSpan(span, fs))
	}
}

// chainLabels lists a node's labels outermost filter first, base operand last.
func chainLabels(n ast.Node, file *source.File, fs *source.FileSet) []string {
	base, filters := ast.Unchain(n)
	labels := make([]string, 0, len(filters)+1)
	for i := len(filters) - 1; i >= 0; i-- {
		labels = append(labels, nodeLabel(filters[i], file, fs))
	}
	return append(labels, nodeLabel(base, file, fs))
}

// FormatNodesPretty печатает узлы с отступом по глубине вложенности фильтров.
func FormatNodesPretty(w io.Writer, nodes []ast.Node, fs *source.FileSet, id source.FileID) error {
	file := fs.Get(id)
	for _, n := range nodes {
		for depth, label := range chainLabels(n, file, fs) {
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatNodesTree рисует дерево с ветками ├─ / └─, корень - файл.
func FormatNodesTree(w io.Writer, nodes []ast.Node, fs *source.FileSet, id source.FileID) error {
	file := fs.Get(id)
	if _, err := fmt.Fprintf(w, "%s (span: %s)\n", file.FormatPath("auto", fs.BaseDir()), formatSpan(file.Span(), fs)); err != nil {
		return err
	}
	for i, n := range nodes {
		branch, indent := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, indent = "└─ ", "   "
		}
		// цепочка фильтров: у каждого уровня ровно один потомок
		var prefix strings.Builder
		for depth, label := range chainLabels(n, file, fs) {
			if depth == 0 {
				fmt.Fprintf(w, "%s%s\n", branch, label)
				prefix.WriteString(indent)
				continue
			}
			fmt.Fprintf(w, "%s└─ %s\n", prefix.String(), label)
			prefix.WriteString("   ")
		}
	}
	return nil
}
