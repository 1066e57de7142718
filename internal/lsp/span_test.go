package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"dtl/internal/source"
)

func virtualFile(t *testing.T, text string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("buf.html", []byte(text)))
}

func TestUTF16PositionMapping(t *testing.T) {
	// é - 2 байта / 1 unit, 🙂 - 4 байта / 2 units
	file := virtualFile(t, "<p>\né🙂{{ x }}\n")

	tests := []struct {
		offset uint32
		want   protocol.Position
	}{
		{0, protocol.Position{Line: 0, Character: 0}},
		{3, protocol.Position{Line: 0, Character: 3}},
		{4, protocol.Position{Line: 1, Character: 0}},
		{6, protocol.Position{Line: 1, Character: 1}},
		{10, protocol.Position{Line: 1, Character: 3}},
		{17, protocol.Position{Line: 1, Character: 10}},
		{18, protocol.Position{Line: 2, Character: 0}},
		{100, protocol.Position{Line: 2, Character: 0}},
	}
	for _, tt := range tests {
		if got := positionForOffset(file, tt.offset); got != tt.want {
			t.Errorf("positionForOffset(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
}

func TestOffsetForPositionRoundTrip(t *testing.T) {
	file := virtualFile(t, "<p>\né🙂{{ x }}\n")
	for _, off := range []uint32{0, 3, 4, 6, 10, 13, 17, 18} {
		pos := positionForOffset(file, off)
		if got := offsetForPosition(file, pos); got != off {
			t.Errorf("offset %d -> %+v -> %d", off, pos, got)
		}
	}

	// позиция внутри суррогатной пары округляется вниз
	if got := offsetForPosition(file, protocol.Position{Line: 1, Character: 2}); got != 6 {
		t.Errorf("mid-surrogate offset = %d, want 6", got)
	}
	// за концом строки - конец строки
	if got := offsetForPosition(file, protocol.Position{Line: 0, Character: 99}); got != 3 {
		t.Errorf("past line end offset = %d, want 3", got)
	}
	if got := offsetForPosition(file, protocol.Position{Line: 9, Character: 0}); got != 18 {
		t.Errorf("past last line offset = %d, want 18", got)
	}
}

func TestRangeForSpanNilFile(t *testing.T) {
	if got := rangeForSpan(nil, source.Span{Start: 1, End: 2}); got != (protocol.Range{}) {
		t.Errorf("expected zero range, got %+v", got)
	}
}
