package parser

import (
	"errors"
	"math/big"
	"strconv"

	"dtl/internal/ast"
	"dtl/internal/token"
)

// parseArgument converts an argument token into a typed ast.Argument.
func (p *Parser) parseArgument(tok token.ExprToken) (*ast.Argument, *Error) {
	arg := &ast.Argument{Span: tok.Span, Content: tok.Content}
	switch tok.Kind {
	case token.ExprVariable:
		arg.Kind = ast.ArgVariable
	case token.ExprText:
		arg.Kind = ast.ArgText
	case token.ExprTranslatedText:
		arg.Kind = ast.ArgTranslatedText
	case token.ExprNumeric:
		if err := parseNumber(p.file.Text(tok.Span), arg); err != nil {
			return nil, &Error{Kind: InvalidNumber, Span: tok.Span}
		}
	default:
		panic("parser: filter token in argument position")
	}
	return arg, nil
}

var errInvalidNumber = errors.New("invalid number")

// parseNumber tries an arbitrary-precision integer first, then a float64.
// Overflowing floats are rejected rather than turned into infinities.
func parseNumber(lit string, arg *ast.Argument) error {
	if n, ok := new(big.Int).SetString(lit, 10); ok {
		arg.Kind = ast.ArgInt
		arg.Int = n
		return nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	// ErrRange (1e999) тоже ошибка: бесконечность в шаблоне не храним
	if err != nil {
		return errInvalidNumber
	}
	arg.Kind = ast.ArgFloat
	arg.Float = f
	return nil
}
