package lexer

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"dtl/internal/source"
	"dtl/internal/token"
)

type exprMode uint8

const (
	modeVariable exprMode = iota
	modeFilter
	modeArgument
)

// ExprLexer tokenizes the content of one `{{ ... }}` construct:
// a variable path followed by `|filter` and `|filter:argument` pairs.
// All token spans are absolute offsets into the file.
type ExprLexer struct {
	file   *source.File
	cursor Cursor
	mode   exprMode
}

// NewExpr creates an expression lexer over inner, the span between the
// `{{` and `}}` delimiters. Surrounding whitespace is skipped.
func NewExpr(file *source.File, inner source.Span) *ExprLexer {
	c := NewSpanCursor(file, inner)
	for !c.EOF() {
		r, sz := utf8.DecodeRune(c.Rest())
		if !unicode.IsSpace(r) {
			break
		}
		c.Off += uint32(sz) // #nosec G115 -- rune size <= 4
	}
	for c.Limit > c.Off {
		r, sz := utf8.DecodeLastRune(c.File.Content[c.Off:c.Limit])
		if !unicode.IsSpace(r) {
			break
		}
		c.Limit -= uint32(sz) // #nosec G115 -- rune size <= 4
	}
	return &ExprLexer{file: file, cursor: c, mode: modeVariable}
}

// Next returns the next expression token. ok is false when the content is
// exhausted. After the first error the lexer yields nothing more.
func (lx *ExprLexer) Next() (tok token.ExprToken, ok bool, err error) {
	if lx.cursor.EOF() {
		return token.ExprToken{}, false, nil
	}
	switch lx.mode {
	case modeVariable:
		lx.mode = modeFilter
		return lx.lexVariable(), true, nil
	case modeFilter:
		return lx.lexFilter(), true, nil
	default:
		lx.mode = modeFilter
		tok, err = lx.lexArgument()
		if err != nil {
			lx.stop()
			return token.ExprToken{}, false, err
		}
		return tok, true, nil
	}
}

// stop discards the rest of the input.
func (lx *ExprLexer) stop() {
	lx.cursor.Off = lx.cursor.Limit
}

func (lx *ExprLexer) fail(kind ErrorKind, start, end uint32) *Error {
	return &Error{Kind: kind, Span: source.Span{File: lx.file.ID, Start: start, End: end}}
}

func plain(kind token.ExprKind, span source.Span) token.ExprToken {
	return token.ExprToken{Kind: kind, Span: span, Content: span}
}

// lexUntil takes everything before end and consumes the separator at end.
func (lx *ExprLexer) lexUntil(end uint32, kind token.ExprKind) token.ExprToken {
	tok := plain(kind, lx.cursor.SpanTo(end))
	lx.cursor.Off = end + 1
	return tok
}

func (lx *ExprLexer) lexToEnd(kind token.ExprKind) token.ExprToken {
	tok := plain(kind, lx.cursor.SpanTo(lx.cursor.Limit))
	lx.cursor.Off = lx.cursor.Limit
	return tok
}

func (lx *ExprLexer) lexVariable() token.ExprToken {
	if pipe, ok := lx.cursor.IndexByte(lx.cursor.Off, '|'); ok {
		return lx.lexUntil(pipe, token.ExprVariable)
	}
	return lx.lexToEnd(token.ExprVariable)
}

func (lx *ExprLexer) lexFilter() token.ExprToken {
	pipe, hasPipe := lx.cursor.IndexByte(lx.cursor.Off, '|')
	colon, hasColon := lx.cursor.IndexByte(lx.cursor.Off, ':')
	switch {
	case hasColon && (!hasPipe || colon < pipe):
		lx.mode = modeArgument
		return lx.lexUntil(colon, token.ExprFilter)
	case hasPipe:
		return lx.lexUntil(pipe, token.ExprFilter)
	default:
		return lx.lexToEnd(token.ExprFilter)
	}
}

func (lx *ExprLexer) lexArgument() (token.ExprToken, error) {
	var (
		tok token.ExprToken
		err error
	)
	switch b := lx.cursor.Peek(); {
	case b == '_':
		if _, b1, ok := lx.cursor.Peek2(); !ok || b1 != '(' {
			return token.ExprToken{}, lx.leadingUnderscore()
		}
		tok, err = lx.lexTranslated()
	case b == '\'' || b == '"':
		tok, err = lx.lexString()
	case isDigit(b):
		tok = lx.lexNumeric()
	default:
		// голая переменная: без проверки остатка
		return lx.lexVariable(), nil
	}
	if err != nil {
		return token.ExprToken{}, err
	}
	return tok, lx.checkRemainder()
}

func (lx *ExprLexer) leadingUnderscore() *Error {
	start := lx.cursor.Off
	end := lx.cursor.Limit
	if i := bytes.IndexFunc(lx.cursor.Rest(), unicode.IsSpace); i >= 0 {
		end = start + uint32(i) // #nosec G115 -- i < Limit-Off
	}
	return lx.fail(LeadingUnderscore, start, end)
}

// lexString scans a quoted literal at the cursor. `\` escapes the next byte;
// the content is returned raw, without unescaping.
func (lx *ExprLexer) lexString() (token.ExprToken, error) {
	m := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '\\':
			lx.cursor.Bump()
		case quote:
			span := lx.cursor.SpanFrom(m)
			return token.ExprToken{Kind: token.ExprText, Span: span, Content: span.Shrink(1, 1)}, nil
		}
	}
	return token.ExprToken{}, lx.fail(IncompleteString, uint32(m), lx.cursor.Limit)
}

// lexTranslated scans `_("...")`.
func (lx *ExprLexer) lexTranslated() (token.ExprToken, error) {
	m := lx.cursor.Mark()
	lx.cursor.Off += 2 // `_(`
	if b := lx.cursor.Peek(); lx.cursor.EOF() || (b != '\'' && b != '"') {
		end := lx.cursor.Limit
		if lx.cursor.EOF() {
			end = lx.cursor.Off
		}
		return token.ExprToken{}, lx.fail(MissingTranslatedString, uint32(m), end)
	}
	str, err := lx.lexString()
	if err != nil {
		return token.ExprToken{}, err
	}
	if !lx.cursor.Eat(')') {
		return token.ExprToken{}, lx.fail(IncompleteTranslatedString, uint32(m), lx.cursor.Off)
	}
	return token.ExprToken{Kind: token.ExprTranslatedText, Span: lx.cursor.SpanFrom(m), Content: str.Content}, nil
}

// lexNumeric greedily takes digits, `.` and `e`; validity is checked by the parser.
func (lx *ExprLexer) lexNumeric() token.ExprToken {
	m := lx.cursor.Mark()
	for b := lx.cursor.Peek(); !lx.cursor.EOF() && (isDigit(b) || b == '.' || b == 'e'); b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
	return plain(token.ExprNumeric, lx.cursor.SpanFrom(m))
}

// checkRemainder requires only whitespace between a literal argument and the
// next `|`, then consumes the pipe.
func (lx *ExprLexer) checkRemainder() error {
	end := lx.cursor.Limit
	pipe, hasPipe := lx.cursor.IndexByte(lx.cursor.Off, '|')
	if hasPipe {
		end = pipe
	}
	if len(bytes.TrimSpace(lx.file.Content[lx.cursor.Off:end])) != 0 {
		return lx.fail(InvalidRemainder, lx.cursor.Off, end)
	}
	if hasPipe {
		lx.cursor.Off = pipe + 1
	} else {
		lx.cursor.Off = end
	}
	return nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
