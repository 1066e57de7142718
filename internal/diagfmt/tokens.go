package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

type TokenOutput struct {
	Kind  string            `json:"kind"`
	Text  string            `json:"text"`
	Span  source.Span       `json:"span"`
	Expr  []ExprTokenOutput `json:"expr,omitempty"`
	Error *ExprErrorOutput  `json:"error,omitempty"`
}

type ExprTokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text"`
	Span    source.Span `json:"span"`
	Content source.Span `json:"content"`
}

type ExprErrorOutput struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Span    source.Span `json:"span"`
}

// exprTokens lexes the inside of a Variable token. The error, if any, is the
// lexer's first and last one.
func exprTokens(file *source.File, tok token.Token) ([]token.ExprToken, *lexer.Error) {
	lx := lexer.NewExpr(file, tok.Inner())
	var out []token.ExprToken
	for {
		et, ok, err := lx.Next()
		if err != nil {
			lexErr, _ := err.(*lexer.Error)
			return out, lexErr
		}
		if !ok {
			return out, nil
		}
		out = append(out, et)
	}
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet, opts TokenOpts) error {
	for i, tok := range tokens {
		file := fs.Get(tok.Span.File)
		startPos, endPos := fs.Resolve(tok.Span)

		if _, err := fmt.Fprintf(w, "%3d: %-15s %q at %d:%d-%d:%d\n",
			i+1, tok.Kind.String(), file.Text(tok.Span),
			startPos.Line, startPos.Col, endPos.Line, endPos.Col); err != nil {
			return err
		}

		if !opts.Expr || tok.Kind != token.Variable {
			continue
		}
		exprs, lexErr := exprTokens(file, tok)
		for _, et := range exprs {
			fmt.Fprintf(w, "     · %-13s %q at %s\n", et.Kind.String(), file.Text(et.Content), formatSpan(et.Span, fs))
		}
		if lexErr != nil {
			fmt.Fprintf(w, "     ! %-13s %s at %s\n", lexErr.Kind.String(), lexErr.Error(), formatSpan(lexErr.Span, fs))
		}
	}
	return nil
}

// BuildTokensOutput собирает JSON-представление токенов без сериализации.
func BuildTokensOutput(tokens []token.Token, fs *source.FileSet, opts TokenOpts) []TokenOutput {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		file := fs.Get(tok.Span.File)
		tokenOut := TokenOutput{
			Kind: tok.Kind.String(),
			Text: file.Text(tok.Span),
			Span: tok.Span,
		}
		if opts.Expr && tok.Kind == token.Variable {
			exprs, lexErr := exprTokens(file, tok)
			for _, et := range exprs {
				tokenOut.Expr = append(tokenOut.Expr, ExprTokenOutput{
					Kind:    et.Kind.String(),
					Text:    file.Text(et.Content),
					Span:    et.Span,
					Content: et.Content,
				})
			}
			if lexErr != nil {
				tokenOut.Error = &ExprErrorOutput{
					Kind:    lexErr.Kind.String(),
					Message: lexErr.Error(),
					Span:    lexErr.Span,
				}
			}
		}
		output = append(output, tokenOut)
	}
	return output
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet, opts TokenOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokensOutput(tokens, fs, opts))
}
