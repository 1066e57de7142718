package parser

import (
	"bytes"
	"errors"

	"dtl/internal/ast"
	"dtl/internal/diag"
	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

type Options struct {
	// Reporter получает первую ошибку как диагностику; может быть nil.
	Reporter diag.Reporter
}

// Parser - состояние парсера на один файл
type Parser struct {
	file *source.File
	lx   *lexer.Lexer
	opts Options
	// verbatim - идентификатор открытого verbatim-блока
	verbatim []byte
}

// Parse builds the top-level node list of file. Parsing stops at the first
// error; no partial tree is returned.
func Parse(file *source.File, opts Options) ([]ast.Node, error) {
	p := Parser{
		file: file,
		lx:   lexer.New(file),
		opts: opts,
	}
	nodes, err := p.parseTemplate()
	if err != nil {
		p.report(err)
		return nil, err
	}
	return nodes, nil
}

func (p *Parser) report(err *Error) {
	if p.opts.Reporter == nil {
		return
	}
	err.Diagnostic().Emit(p.opts.Reporter)
}

func (p *Parser) parseTemplate() ([]ast.Node, *Error) {
	var nodes []ast.Node
	for tok := range p.lx.Tokens() {
		switch tok.Kind {
		case token.Text:
			nodes = append(nodes, ast.Text{Span: tok.Span})
		case token.Comment:
			continue
		case token.Variable:
			n, err := p.parseVariable(tok)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case token.Tag:
			if err := p.parseTag(tok); err != nil {
				return nil, err
			}
		}
	}
	return nodes, nil
}

// parseTag accepts the delimiters of verbatim blocks, whose body the lexer
// has already turned into text. Other tags have no grammar yet.
func (p *Parser) parseTag(tok token.Token) *Error {
	inner := bytes.TrimSpace(p.file.Slice(tok.Inner()))
	switch {
	case p.verbatim != nil && lexer.IsVerbatimCloser(inner, p.verbatim):
		p.verbatim = nil
		return nil
	case p.verbatim == nil && lexer.IsVerbatimOpener(inner):
		p.verbatim = inner
		return nil
	default:
		return &Error{Kind: UnsupportedTag, Span: tok.Span}
	}
}

// exprStream wraps ExprLexer with one token of lookahead.
type exprStream struct {
	lx      *lexer.ExprLexer
	pending *token.ExprToken
}

func (s *exprStream) next() (token.ExprToken, bool, *Error) {
	if s.pending != nil {
		tok := *s.pending
		s.pending = nil
		return tok, true, nil
	}
	tok, ok, err := s.lx.Next()
	if err != nil {
		return token.ExprToken{}, false, wrapLex(err)
	}
	return tok, ok, nil
}

// argument returns the token after a filter name if it is that filter's argument.
func (s *exprStream) argument() (*token.ExprToken, *Error) {
	tok, ok, err := s.next()
	if err != nil || !ok {
		return nil, err
	}
	if tok.Kind == token.ExprFilter {
		s.pending = &tok
		return nil, nil
	}
	return &tok, nil
}

// parseVariable folds `a|f:x|g` into Filter(g, Filter(f, Variable(a))).
// The chain is built in a loop, so long chains do not grow the stack.
func (p *Parser) parseVariable(tok token.Token) (ast.Node, *Error) {
	s := exprStream{lx: lexer.NewExpr(p.file, tok.Inner())}

	first, ok, err := s.next()
	if err != nil {
		return nil, err
	}
	if !ok || first.Span.Empty() {
		return nil, &Error{Kind: EmptyVariable, Span: tok.Span}
	}
	if err := p.checkVariable(first.Span); err != nil {
		return nil, err
	}
	var acc ast.Node = ast.Variable{Span: first.Span}

	for {
		name, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return acc, nil
		}
		argTok, err := s.argument()
		if err != nil {
			return nil, err
		}
		var arg *ast.Argument
		if argTok != nil && argTok.Kind == token.ExprVariable && argTok.Span.Empty() &&
			p.file.Text(name.Span) == filterDefault {
			// `default:|next` - двоеточие без аргумента
			return nil, &Error{Kind: MissingArgument, Span: name.Span, Filter: name.Span}
		}
		if argTok != nil && argTok.Kind == token.ExprVariable && !argTok.Span.Empty() {
			if err := p.checkVariable(argTok.Span); err != nil {
				return nil, err
			}
		}
		if argTok != nil {
			if arg, err = p.parseArgument(*argTok); err != nil {
				return nil, err
			}
		}
		filter, err := p.newFilter(name.Span, acc, arg)
		if err != nil {
			return nil, err
		}
		acc = filter
	}
}

// checkVariable rejects paths where any segment starts with `_`.
func (p *Parser) checkVariable(span source.Span) *Error {
	path := p.file.Slice(span)
	if path[0] != '_' && !bytes.Contains(path, []byte("._")) {
		return nil
	}
	lexErr := &lexer.Error{Kind: lexer.LeadingUnderscore, Span: span}
	return &Error{Kind: Lex, Span: span, lex: lexErr}
}

const (
	filterDefault = "default"
	filterLower   = "lower"
)

// newFilter validates the arity of the filters the parser knows about.
func (p *Parser) newFilter(name source.Span, left ast.Node, arg *ast.Argument) (*ast.Filter, *Error) {
	f := &ast.Filter{Span: name, Left: left, Arg: arg}
	switch p.file.Text(name) {
	case filterDefault:
		if arg == nil {
			return nil, &Error{Kind: MissingArgument, Span: name, Filter: name}
		}
		f.Type = ast.FilterDefault
	case filterLower:
		if arg != nil {
			return nil, &Error{Kind: UnexpectedArgument, Span: arg.Span, Filter: name}
		}
		f.Type = ast.FilterLower
	default:
		f.Type = ast.FilterExternal
	}
	return f, nil
}

// AsError extracts a parse error from err.
func AsError(err error) (*Error, bool) {
	var perr *Error
	ok := errors.As(err, &perr)
	return perr, ok
}
