package lexer_test

import (
	"errors"
	"testing"

	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

type exprSpec struct {
	kind       token.ExprKind
	start, end uint32
	content    string
}

type errSpec struct {
	kind       lexer.ErrorKind
	start, end uint32
}

// lexExpr прогоняет ExprLexer по всему файлу, как по содержимому {{ }}
func lexExpr(input string) (*source.File, []token.ExprToken, error) {
	f := makeFile(input)
	lx := lexer.NewExpr(f, f.Span())
	var toks []token.ExprToken
	for {
		tok, ok, err := lx.Next()
		if err != nil {
			return f, toks, err
		}
		if !ok {
			return f, toks, nil
		}
		toks = append(toks, tok)
	}
}

var (
	fooBar  = exprSpec{token.ExprVariable, 1, 8, "foo.bar"}
	dflt    = exprSpec{token.ExprFilter, 9, 16, "default"}
	noError = errSpec{}
)

func TestExprLexer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []exprSpec
		wantErr errSpec
	}{
		{"empty", "  ", nil, noError},
		{"variable", " foo.bar ", []exprSpec{fooBar}, noError},
		{"filter", " foo.bar|title ", []exprSpec{fooBar, {token.ExprFilter, 9, 14, "title"}}, noError},
		{"single quoted", " foo.bar|default:'foo' ", []exprSpec{fooBar, dflt, {token.ExprText, 17, 22, "foo"}}, noError},
		{"double quoted", ` foo.bar|default:"foo" `, []exprSpec{fooBar, dflt, {token.ExprText, 17, 22, "foo"}}, noError},
		{"translated", " foo.bar|default:_('foo') ", []exprSpec{fooBar, dflt, {token.ExprTranslatedText, 17, 25, "foo"}}, noError},
		{"numeric", " foo.bar|default:500 ", []exprSpec{fooBar, dflt, {token.ExprNumeric, 17, 20, "500"}}, noError},
		{"lenient numeric", " foo|default:9.9.9e ", []exprSpec{
			{token.ExprVariable, 1, 4, "foo"},
			{token.ExprFilter, 5, 12, "default"},
			{token.ExprNumeric, 13, 19, "9.9.9e"},
		}, noError},
		{"bare variable", " foo.bar|default:spam ", []exprSpec{fooBar, dflt, {token.ExprVariable, 17, 21, "spam"}}, noError},
		{"bare variable then filter", " foo.bar|default:spam|title ", []exprSpec{
			fooBar, dflt,
			{token.ExprVariable, 17, 21, "spam"},
			{token.ExprFilter, 22, 27, "title"},
		}, noError},
		{"string then filter", ` foo.bar|default:"spam"|title `, []exprSpec{
			fooBar, dflt,
			{token.ExprText, 17, 23, "spam"},
			{token.ExprFilter, 24, 29, "title"},
		}, noError},
		{"whitespace before pipe", ` a|b:'x'  |c`, []exprSpec{
			{token.ExprVariable, 1, 2, "a"},
			{token.ExprFilter, 3, 4, "b"},
			{token.ExprText, 5, 8, "x"},
			{token.ExprFilter, 11, 12, "c"},
		}, noError},
		{"escaped quote", ` a|b:'it\'s'`, []exprSpec{
			{token.ExprVariable, 1, 2, "a"},
			{token.ExprFilter, 3, 4, "b"},
			{token.ExprText, 5, 12, `it\'s`},
		}, noError},
		{"colon in string", ` a|b:'x|y:z'|c`, []exprSpec{
			{token.ExprVariable, 1, 2, "a"},
			{token.ExprFilter, 3, 4, "b"},
			{token.ExprText, 5, 12, "x|y:z"},
			{token.ExprFilter, 13, 14, "c"},
		}, noError},
		{"pipe before colon", "a|b|c:d", []exprSpec{
			{token.ExprVariable, 0, 1, "a"},
			{token.ExprFilter, 2, 3, "b"},
			{token.ExprFilter, 4, 5, "c"},
			{token.ExprVariable, 6, 7, "d"},
		}, noError},
		{"leading underscore", " foo.bar|default:_spam ", []exprSpec{fooBar, dflt}, errSpec{lexer.LeadingUnderscore, 17, 22}},
		{"lone underscore", " foo.bar|default:_ ", []exprSpec{fooBar, dflt}, errSpec{lexer.LeadingUnderscore, 17, 18}},
		{"underscore stops at space", " a|b:_x y", []exprSpec{
			{token.ExprVariable, 1, 2, "a"},
			{token.ExprFilter, 3, 4, "b"},
		}, errSpec{lexer.LeadingUnderscore, 5, 7}},
		{"incomplete string", " foo.bar|default:'foo ", []exprSpec{fooBar, dflt}, errSpec{lexer.IncompleteString, 17, 21}},
		{"incomplete translated", " foo.bar|default:_('foo' ", []exprSpec{fooBar, dflt}, errSpec{lexer.IncompleteTranslatedString, 17, 24}},
		{"incomplete string in translated", " foo.bar|default:_('foo ", []exprSpec{fooBar, dflt}, errSpec{lexer.IncompleteString, 19, 23}},
		{"missing translated at end", " foo.bar|default:_( ", []exprSpec{fooBar, dflt}, errSpec{lexer.MissingTranslatedString, 17, 19}},
		{"missing translated", " foo.bar|default:_(foo) ", []exprSpec{fooBar, dflt}, errSpec{lexer.MissingTranslatedString, 17, 23}},
		{"invalid remainder", ` foo.bar|default:"spam"title `, []exprSpec{fooBar, dflt}, errSpec{lexer.InvalidRemainder, 23, 28}},
		{"invalid remainder before pipe", ` foo.bar|default:"spam"title|title `, []exprSpec{fooBar, dflt}, errSpec{lexer.InvalidRemainder, 23, 28}},
		{"numeric remainder", " a|b:12px", []exprSpec{
			{token.ExprVariable, 1, 2, "a"},
			{token.ExprFilter, 3, 4, "b"},
		}, errSpec{lexer.InvalidRemainder, 7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, toks, err := lexExpr(tt.input)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %d", len(toks), toks, len(tt.want))
			}
			for i, w := range tt.want {
				g := toks[i]
				if g.Kind != w.kind || g.Span.Start != w.start || g.Span.End != w.end {
					t.Errorf("token %d: got %v %d..%d, want %v %d..%d", i, g.Kind, g.Span.Start, g.Span.End, w.kind, w.start, w.end)
				}
				if got := f.Text(g.Content); got != w.content {
					t.Errorf("token %d: content %q, want %q", i, got, w.content)
				}
			}
			if tt.wantErr == noError {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			var lexErr *lexer.Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *lexer.Error, got %v", err)
			}
			if lexErr.Kind != tt.wantErr.kind || lexErr.Span.Start != tt.wantErr.start || lexErr.Span.End != tt.wantErr.end {
				t.Errorf("got %v %d..%d, want %v %d..%d", lexErr.Kind, lexErr.Span.Start, lexErr.Span.End,
					tt.wantErr.kind, tt.wantErr.start, tt.wantErr.end)
			}
		})
	}
}

func TestExprLexerStopsAfterError(t *testing.T) {
	f := makeFile("a|b:'x|c|d")
	lx := lexer.NewExpr(f, f.Span())
	var sawErr bool
	for range 10 {
		_, ok, err := lx.Next()
		if err != nil {
			sawErr = true
			continue
		}
		if sawErr && ok {
			t.Fatal("token after error")
		}
		if !ok {
			break
		}
	}
	if !sawErr {
		t.Fatal("expected an error")
	}
}

func TestExprLexerAbsoluteOffsets(t *testing.T) {
	f := makeFile("text {{  foo|bar:'baz'  }} more")
	inner := token.Token{Kind: token.Variable, Span: source.Span{File: f.ID, Start: 5, End: 26}}.Inner()
	lx := lexer.NewExpr(f, inner)

	want := []string{"foo", "bar", "'baz'"}
	for i, w := range want {
		tok, ok, err := lx.Next()
		if err != nil || !ok {
			t.Fatalf("token %d: ok=%v err=%v", i, ok, err)
		}
		if got := f.Text(tok.Span); got != w {
			t.Errorf("token %d: %q, want %q", i, got, w)
		}
	}
	if _, ok, _ := lx.Next(); ok {
		t.Error("expected end of expression")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		kind lexer.ErrorKind
		msg  string
	}{
		{lexer.LeadingUnderscore, "Variables and attributes may not begin with underscores"},
		{lexer.IncompleteString, "Expected a complete string literal"},
		{lexer.IncompleteTranslatedString, "Expected a complete translation string"},
		{lexer.MissingTranslatedString, "Expected a string literal within translation"},
		{lexer.InvalidRemainder, "Could not parse the remainder"},
	}
	for _, tt := range tests {
		err := &lexer.Error{Kind: tt.kind}
		if err.Error() != tt.msg {
			t.Errorf("%v: %q, want %q", tt.kind, err.Error(), tt.msg)
		}
	}
	if got := lexer.ErrorKind(0).String(); got != "ErrorKind(0)" {
		t.Errorf("zero kind String() = %q", got)
	}
}
