package lexer_test

import (
	"strings"
	"testing"

	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

// makeFile создаёт виртуальный файл для тестовой строки
func makeFile(content string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.html", []byte(content)))
}

type tokSpec struct {
	kind       token.Kind
	start, end uint32
	text       string
}

func lexAll(t *testing.T, input string) (*source.File, []token.Token) {
	t.Helper()
	f := makeFile(input)
	return f, lexer.New(f).All()
}

func checkTokens(t *testing.T, input string, want []tokSpec) {
	t.Helper()
	f, got := lexAll(t, input)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens %v, want %d", input, len(got), got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Kind != w.kind || g.Span.Start != w.start || g.Span.End != w.end {
			t.Errorf("token %d: got %v %d..%d, want %v %d..%d", i, g.Kind, g.Span.Start, g.Span.End, w.kind, w.start, w.end)
		}
		if w.text != "" && f.Text(g.Span) != w.text {
			t.Errorf("token %d: text %q, want %q", i, f.Text(g.Span), w.text)
		}
	}
}

func TestLexBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokSpec
	}{
		{"empty", "", nil},
		{"text", "Just some text", []tokSpec{{token.Text, 0, 14, ""}}},
		{"whitespace", "    ", []tokSpec{{token.Text, 0, 4, ""}}},
		{"comment", "{# comment #}", []tokSpec{{token.Comment, 0, 13, ""}}},
		{"variable", "{{ foo.bar|title }}", []tokSpec{{token.Variable, 0, 19, ""}}},
		{"tag", "{% for foo in bar %}", []tokSpec{{token.Tag, 0, 20, ""}}},
		{"lone brace", "a { b } c", []tokSpec{{token.Text, 0, 9, ""}}},
		{"brace at end", "text{", []tokSpec{{token.Text, 0, 5, ""}}},
		{"empty variable", "{{}}", []tokSpec{{token.Variable, 0, 4, ""}}},
		{"opener overlaps closer", "{%}", []tokSpec{{token.Text, 0, 3, ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, tt.want)
		})
	}
}

func TestLexIncomplete(t *testing.T) {
	tests := []string{
		"{{ foo.bar|title }",
		"{# comment #",
		"{% for foo in bar %",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			checkTokens(t, input, []tokSpec{{token.Text, 0, uint32(len(input)), input}})
		})
	}
}

func TestLexIncompleteAfterText(t *testing.T) {
	checkTokens(t, "hi {{ there", []tokSpec{
		{token.Text, 0, 3, "hi "},
		{token.Text, 3, 11, "{{ there"},
	})
}

func TestLexDjangoExample(t *testing.T) {
	input := "text\n{% if test %}{{ varvalue }}{% endif %}{#comment {{not a var}} {%not a block%} #}end text"
	checkTokens(t, input, []tokSpec{
		{token.Text, 0, 5, "text\n"},
		{token.Tag, 5, 18, "{% if test %}"},
		{token.Variable, 18, 32, "{{ varvalue }}"},
		{token.Tag, 32, 43, "{% endif %}"},
		{token.Comment, 43, 85, "{#comment {{not a var}} {%not a block%} #}"},
		{token.Text, 85, 93, "end text"},
	})
}

func TestLexVerbatim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokSpec
	}{
		{
			name:  "variable inside",
			input: "{% verbatim %}{{bare   }}{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, "{% verbatim %}"},
				{token.Text, 14, 25, "{{bare   }}"},
				{token.Tag, 25, 42, "{% endverbatim %}"},
			},
		},
		{
			name:  "foreign tag inside",
			input: "{% verbatim %}{% endif %}{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 25, "{% endif %}"},
				{token.Tag, 25, 42, ""},
			},
		},
		{
			name:  "verbatim tag inside text",
			input: "{% verbatim %}It's the {% verbatim %} tag{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 41, "It's the {% verbatim %} tag"},
				{token.Tag, 41, 58, ""},
			},
		},
		{
			name:  "nested",
			input: "{% verbatim %}{% verbatim %}{% endverbatim %}{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 28, "{% verbatim %}"},
				{token.Tag, 28, 45, ""},
				{token.Tag, 45, 62, ""},
			},
		},
		{
			name:  "adjacent",
			input: "{% verbatim %}{% endverbatim %}{% verbatim %}{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Tag, 14, 31, "{% endverbatim %}"},
				{token.Tag, 31, 45, ""},
				{token.Tag, 45, 62, ""},
			},
		},
		{
			name:  "named",
			input: "{% verbatim special %}Don't {% endverbatim %} just yet{% endverbatim special %}",
			want: []tokSpec{
				{token.Tag, 0, 22, "{% verbatim special %}"},
				{token.Text, 22, 54, "Don't {% endverbatim %} just yet"},
				{token.Tag, 54, 79, "{% endverbatim special %}"},
			},
		},
		{
			name:  "unterminated swallows the rest",
			input: "{% verbatim %}{{ a }}{% if %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 29, "{{ a }}{% if %}"},
			},
		},
		{
			name:  "unclosed inner tag",
			input: "{% verbatim %}{{ a }}{% if",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 26, "{{ a }}{% if"},
			},
		},
		{
			name:  "closer must start with end",
			input: "{% verbatim %}{% xyzverbatim %}{% endverbatim %}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 31, "{% xyzverbatim %}"},
				{token.Tag, 31, 48, ""},
			},
		},
		{
			name:  "verbatim prefix only",
			input: "{% verbatimx %}{{ a }}",
			want: []tokSpec{
				{token.Tag, 0, 15, ""},
				{token.Variable, 15, 22, ""},
			},
		},
		{
			name:  "text after block",
			input: "{% verbatim %}{{x}}{% endverbatim %}{{ y }}",
			want: []tokSpec{
				{token.Tag, 0, 14, ""},
				{token.Text, 14, 19, ""},
				{token.Tag, 19, 36, ""},
				{token.Variable, 36, 43, ""},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, tt.want)
		})
	}
}

// TestLexPartition проверяет, что спаны покрывают вход без дыр и перекрытий
func TestLexPartition(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"{{ a }}{{ b }}",
		"{% verbatim %}{% verbatim x %}{{ }}{% endverbatim %}tail{# c #}",
		"{{ unterminated",
		"{{{{}}}}{%%}{##}",
		"α{{ β }}γ{% δ %}",
		strings.Repeat("{{ x }} {% y %} {# z #}", 20),
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f, toks := lexAll(t, input)
			var b strings.Builder
			var pos uint32
			for i, tok := range toks {
				if tok.Span.Start != pos {
					t.Fatalf("token %d starts at %d, want %d", i, tok.Span.Start, pos)
				}
				if tok.Span.Empty() {
					t.Fatalf("token %d is empty", i)
				}
				pos = tok.Span.End
				b.WriteString(f.Text(tok.Span))
			}
			if b.String() != input {
				t.Fatalf("reconstruction mismatch: %q", b.String())
			}
		})
	}
}

func TestLexTokensIterator(t *testing.T) {
	f := makeFile("a{{ b }}c")
	var kinds []token.Kind
	for tok := range lexer.New(f).Tokens() {
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.Variable {
			break
		}
	}
	if len(kinds) != 2 || kinds[0] != token.Text || kinds[1] != token.Variable {
		t.Fatalf("unexpected kinds %v", kinds)
	}
}

func TestLexNextAfterEnd(t *testing.T) {
	lx := lexer.New(makeFile("x"))
	if _, ok := lx.Next(); !ok {
		t.Fatal("expected one token")
	}
	for range 3 {
		if _, ok := lx.Next(); ok {
			t.Fatal("lexer must stay exhausted")
		}
	}
}
