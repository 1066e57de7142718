package testkit_test

import (
	"testing"

	"dtl/internal/lexer"
	"dtl/internal/parser"
	"dtl/internal/source"
	"dtl/internal/testkit"
	"dtl/internal/token"
)

var templates = []string{
	"",
	"plain text",
	"<p>{{ user.name|default:'anon'|lower }}</p>{# note #}",
	"{% verbatim %}{{ raw }}{% endverbatim %}{{ a|b:1.5|c:_('x') }}",
	"{{ unterminated",
}

func TestInvariantsHoldForParsedTemplates(t *testing.T) {
	for _, src := range templates {
		t.Run(src, func(t *testing.T) {
			fs := source.NewFileSet()
			f := fs.Get(fs.AddVirtual("t.html", []byte(src)))

			if err := testkit.CheckTokenPartition(f, lexer.New(f).All()); err != nil {
				t.Fatalf("partition: %v", err)
			}
			nodes, err := parser.Parse(f, parser.Options{})
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := testkit.CheckNodeSpans(f, nodes); err != nil {
				t.Fatalf("node spans: %v", err)
			}
			if err := testkit.CheckTextNodes(f, nodes); err != nil {
				t.Fatalf("text nodes: %v", err)
			}
		})
	}
}

func TestCheckTokenPartitionDetectsGaps(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.html", []byte("abcdef")))
	toks := []token.Token{
		{Kind: token.Text, Span: source.Span{File: f.ID, Start: 0, End: 2}},
		{Kind: token.Text, Span: source.Span{File: f.ID, Start: 3, End: 6}},
	}
	if err := testkit.CheckTokenPartition(f, toks); err == nil {
		t.Fatal("gap not detected")
	}
	if err := testkit.CheckTokenPartition(f, toks[:1]); err == nil {
		t.Fatal("short coverage not detected")
	}
}
