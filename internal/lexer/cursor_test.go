package lexer

import (
	"dtl/internal/source"
	"testing"
)

// helper function to create a file
func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.html", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading проверяет последовательное чтение: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))

	for _, want := range []byte("a\nb") {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Peek(); got != want {
			t.Errorf("Peek() = %q, want %q", got, want)
		}
		if got := cursor.Bump(); got != want {
			t.Errorf("Bump() = %q, want %q", got, want)
		}
	}
	if !cursor.EOF() {
		t.Error("Expected EOF after reading all content")
	}
	if cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Error("Peek/Bump at EOF must return 0")
	}
}

func TestMarkAndSpan(t *testing.T) {
	cursor := NewCursor(createFile("{{ x }}"))
	m := cursor.Mark()
	cursor.Bump()
	cursor.Bump()
	if sp := cursor.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Errorf("SpanFrom = %v", sp)
	}
	if !cursor.Eat(' ') || cursor.Eat('}') {
		t.Error("Eat matched the wrong byte")
	}
}

func TestSpanCursor(t *testing.T) {
	f := createFile("ab{{ cd }}ef")
	c := NewSpanCursor(f, source.Span{File: f.ID, Start: 4, End: 8})

	if string(c.Rest()) != " cd " {
		t.Errorf("Rest() = %q", c.Rest())
	}
	if _, ok := c.IndexByte(c.Off, 'e'); ok {
		t.Error("IndexByte must not look past Limit")
	}
	if i, ok := c.Index(c.Off, "cd"); !ok || i != 5 {
		t.Errorf("Index = %d,%v, want 5,true", i, ok)
	}
	if _, _, ok := (&Cursor{File: f, Off: 7, Limit: 8}).Peek2(); ok {
		t.Error("Peek2 must fail with a single byte left")
	}

	clamped := NewSpanCursor(f, source.Span{File: f.ID, Start: 20, End: 30})
	if !clamped.EOF() || clamped.Rest() != nil {
		t.Error("span past the end must yield an empty cursor")
	}
}
