package lexer

import (
	"bytes"
	"iter"

	"dtl/internal/source"
	"dtl/internal/token"
)

const (
	delimLen = 2

	verbatimTag = "verbatim"
	endPrefix   = "end"
)

// Lexer splits a template into Text/Variable/Tag/Comment tokens.
// The token spans partition the file: every byte belongs to exactly one token.
// Unterminated constructs never fail, they degrade to Text.
type Lexer struct {
	file   *source.File
	cursor Cursor
	// verbatim хранит идентификатор открытого verbatim-блока ("verbatim" или "verbatim name").
	verbatim []byte
}

func New(file *source.File) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
	}
}

// Next returns the next token, or false once the input is exhausted.
func (lx *Lexer) Next() (token.Token, bool) {
	if lx.cursor.EOF() {
		return token.Token{}, false
	}
	if lx.verbatim != nil {
		return lx.lexVerbatim(), true
	}

	off := lx.cursor.Off
	next, ok := lx.nextOpener(off)
	switch {
	case !ok:
		return lx.textTo(lx.cursor.Limit), true
	case next > off:
		return lx.textTo(next), true
	default:
		return lx.lexTag(), true
	}
}

// All drains the lexer.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for tok, ok := lx.Next(); ok; tok, ok = lx.Next() {
		out = append(out, tok)
	}
	return out
}

// Tokens returns the remaining tokens as an iterator.
func (lx *Lexer) Tokens() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for tok, ok := lx.Next(); ok; tok, ok = lx.Next() {
			if !yield(tok) {
				return
			}
		}
	}
}

// nextOpener finds the earliest `{{`, `{%` or `{#` at or after from.
func (lx *Lexer) nextOpener(from uint32) (uint32, bool) {
	for {
		i, ok := lx.cursor.IndexByte(from, '{')
		if !ok || i+1 >= lx.cursor.Limit {
			return 0, false
		}
		if closerFor(lx.file.Content[i+1]) != "" {
			return i, true
		}
		from = i + 1
	}
}

func closerFor(b byte) string {
	switch b {
	case '{':
		return "}}"
	case '%':
		return "%}"
	case '#':
		return "#}"
	default:
		return ""
	}
}

func kindFor(b byte) token.Kind {
	switch b {
	case '{':
		return token.Variable
	case '%':
		return token.Tag
	default:
		return token.Comment
	}
}

func (lx *Lexer) textTo(end uint32) token.Token {
	m := lx.cursor.Mark()
	lx.cursor.Off = end
	return token.Token{Kind: token.Text, Span: lx.cursor.SpanFrom(m)}
}

// lexTag lexes a construct starting with a two-byte opener at the cursor.
// Без закрывающего разделителя весь остаток файла становится текстом.
func (lx *Lexer) lexTag() token.Token {
	m := lx.cursor.Mark()
	opener := lx.file.Content[lx.cursor.Off+1]
	closeAt, ok := lx.cursor.Index(lx.cursor.Off+delimLen, closerFor(opener))
	if !ok {
		return lx.textTo(lx.cursor.Limit)
	}
	lx.cursor.Off = closeAt + delimLen
	tok := token.Token{Kind: kindFor(opener), Span: lx.cursor.SpanFrom(m)}

	if tok.Kind == token.Tag {
		inner := bytes.TrimSpace(lx.file.Slice(tok.Inner()))
		if IsVerbatimOpener(inner) {
			lx.verbatim = inner
		}
	}
	return tok
}

// IsVerbatimOpener reports whether trimmed tag content opens a verbatim block.
// The content itself is the identifier its closer must repeat after "end".
func IsVerbatimOpener(inner []byte) bool {
	return string(inner) == verbatimTag || bytes.HasPrefix(inner, []byte(verbatimTag+" "))
}

// IsVerbatimCloser reports whether trimmed tag content closes the block named ident.
func IsVerbatimCloser(inner, ident []byte) bool {
	return bytes.HasPrefix(inner, []byte(endPrefix)) && bytes.Equal(inner[len(endPrefix):], ident)
}

// lexVerbatim passes everything up to the matching closer through as text.
// Nested or foreign tags are ordinary content; only the closer with the same
// identifier ends the block.
func (lx *Lexer) lexVerbatim() token.Token {
	ident := lx.verbatim
	lx.verbatim = nil

	start := lx.cursor.Off
	from := start
	for {
		openAt, ok := lx.cursor.Index(from, "{%")
		if !ok {
			return lx.textTo(lx.cursor.Limit)
		}
		closeAt, ok := lx.cursor.Index(openAt+delimLen, "%}")
		if !ok {
			return lx.textTo(lx.cursor.Limit)
		}
		inner := bytes.TrimSpace(lx.file.Content[openAt+delimLen : closeAt])
		if !IsVerbatimCloser(inner, ident) {
			from = closeAt + delimLen
			continue
		}
		if openAt == start {
			m := lx.cursor.Mark()
			lx.cursor.Off = closeAt + delimLen
			return token.Token{Kind: token.Tag, Span: lx.cursor.SpanFrom(m)}
		}
		// текст до закрывающего тега; сам тег разберётся обычным путём
		return lx.textTo(openAt)
	}
}
