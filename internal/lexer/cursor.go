package lexer

import (
	"bytes"
	"fmt"

	"dtl/internal/source"

	"fortio.org/safecast"
)

// Cursor представляет собой позицию в файле
type Cursor struct {
	File *source.File
	Off  uint32
	// Limit is the exclusive upper bound for Off.
	Limit uint32
}

// NewCursor creates a cursor over the whole file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{
		File:  f,
		Off:   0,
		Limit: limit,
	}
}

// NewSpanCursor creates a cursor restricted to span.
func NewSpanCursor(f *source.File, span source.Span) Cursor {
	c := NewCursor(f)
	c.Off = min(span.Start, c.Limit)
	c.Limit = max(c.Off, min(span.End, c.Limit))
	return c
}

// EOF проверяет, достигнут ли конец области
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 читает текущий и следующий байт, если есть, иначе возвращает 0, 0, false
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.Limit {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// Bump перемещает курсор на один байт вперед и возвращает прочитанный байт
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Eat consumes the next byte if it matches the provided byte.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// Rest returns the unread bytes up to Limit.
func (c *Cursor) Rest() []byte {
	if c.EOF() {
		return nil
	}
	return c.File.Content[c.Off:c.Limit]
}

// Index returns the absolute offset of the first occurrence of sep at or after from.
func (c *Cursor) Index(from uint32, sep string) (uint32, bool) {
	if from >= c.Limit {
		return 0, false
	}
	i := bytes.Index(c.File.Content[from:c.Limit], []byte(sep))
	if i < 0 {
		return 0, false
	}
	return from + uint32(i), true // #nosec G115 -- i < Limit-from
}

// IndexByte is Index for a single byte.
func (c *Cursor) IndexByte(from uint32, b byte) (uint32, bool) {
	if from >= c.Limit {
		return 0, false
	}
	i := bytes.IndexByte(c.File.Content[from:c.Limit], b)
	if i < 0 {
		return 0, false
	}
	return from + uint32(i), true // #nosec G115 -- i < Limit-from
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom получает Span для фрагмента, начиная с метки
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}

// SpanTo returns the span [Off, end) without moving the cursor.
func (c *Cursor) SpanTo(end uint32) source.Span {
	return source.Span{File: c.File.ID, Start: c.Off, End: end}
}

