package textpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

func TestByteIndexToCharIndex(t *testing.T) {
	tests := []struct {
		name string
		line string
		in   int
		want int
	}{
		{"ascii start", "hello", 0, 0},
		{"ascii middle", "hello", 1, 1},
		{"ascii last", "hello", 4, 4},
		{"ascii end", "hello", 5, 5},
		{"three byte before", "a★b", 0, 0},
		{"three byte start", "a★b", 1, 1},
		{"three byte inside", "a★b", 2, 2},
		{"after three byte", "a★b", 4, 2},
		{"three byte end", "a★b", 5, 3},
		{"surrogate start", "a💩b", 1, 1},
		{"after surrogate", "a💩b", 5, 3},
		{"surrogate end", "a💩b", 6, 4},
		{"past end", "ab", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ByteIndexToCharIndex(tt.line, tt.in))
		})
	}
}

func TestCharIndexToByteIndex(t *testing.T) {
	assert.Equal(t, 0, CharIndexToByteIndex("a★b", 0))
	assert.Equal(t, 1, CharIndexToByteIndex("a★b", 1))
	assert.Equal(t, 4, CharIndexToByteIndex("a★b", 2))
	assert.Equal(t, 5, CharIndexToByteIndex("a💩b", 3))
	assert.Equal(t, 6, CharIndexToByteIndex("a💩b", 4))
	assert.Equal(t, 2, CharIndexToByteIndex("ab", 9))
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 3, UTF16Len("a★b"))
	assert.Equal(t, 4, UTF16Len("a💩b"))
}

func TestDocument_LineStarts(t *testing.T) {
	doc := NewDocument([]string{"line1", "line2", "line3"})
	assert.Equal(t, []int{0, 6, 12}, doc.LineStarts)
	assert.Equal(t, "line1\nline2\nline3", doc.Text)
	assert.Equal(t, 17, doc.Len())
	assert.Equal(t, 3, doc.LineCount())
}

func TestDocument_Offset(t *testing.T) {
	doc := NewDocument([]string{"line1", "line2", "line3"})

	off, err := doc.Offset(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, off)

	off, err = doc.Offset(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 16, off)

	off, err = doc.Offset(1, 99)
	require.NoError(t, err)
	assert.Equal(t, 5, off)
}

func TestDocument_OffsetMultiByte(t *testing.T) {
	doc := NewDocument([]string{"a★b"})
	off, err := doc.Offset(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, off)

	doc = NewDocument([]string{"x", "a💩b"})
	off, err = doc.Offset(2, 6)
	require.NoError(t, err)
	assert.Equal(t, 2+3, off)
}

func TestDocument_OffsetOutOfRangeLine(t *testing.T) {
	doc := NewDocument([]string{"a", "b"})
	for _, line := range []int{0, 3, -1} {
		_, err := doc.Offset(line, 1)
		require.Error(t, err)
		var pe *errors.PositionError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, line, pe.Line)
		assert.Equal(t, 2, pe.LineCount)
	}
}

func TestDocument_CursorAt(t *testing.T) {
	doc := NewDocument([]string{"line1", "a★b"})
	assert.Equal(t, editor.Cursor{Line: 1, Column: 1}, doc.CursorAt(0))
	assert.Equal(t, editor.Cursor{Line: 2, Column: 1}, doc.CursorAt(6))
	assert.Equal(t, editor.Cursor{Line: 2, Column: 5}, doc.CursorAt(8))
}

func TestDocument_Empty(t *testing.T) {
	assert.True(t, NewDocument(nil).Empty())
	assert.True(t, NewDocument([]string{"  ", "\t"}).Empty())
	assert.False(t, NewDocument([]string{"", "x"}).Empty())
}

func TestDocument_Region(t *testing.T) {
	doc := NewDocument([]string{"const a = 1;", "const ★ = '💩';"})

	r := doc.Region(&estree.SourceLocation{
		Start: estree.Position{Line: 1, Column: 0},
		End:   estree.Position{Line: 1, Column: 12},
	})
	assert.Equal(t, editor.Region{StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 13}, r)

	// ★ sits at UTF-16 column 6, byte column 7, and is three bytes wide.
	r = doc.Region(&estree.SourceLocation{
		Start: estree.Position{Line: 2, Column: 6},
		End:   estree.Position{Line: 2, Column: 7},
	})
	assert.Equal(t, editor.Region{StartLine: 2, StartColumn: 7, EndLine: 2, EndColumn: 10}, r)

	// The string literal holds a surrogate pair.
	r = doc.Region(&estree.SourceLocation{
		Start: estree.Position{Line: 2, Column: 10},
		End:   estree.Position{Line: 2, Column: 14},
	})
	assert.Equal(t, 13, r.StartColumn)
	assert.Equal(t, 19, r.EndColumn)
}

func TestDocument_RegionWidensEmptySpan(t *testing.T) {
	doc := NewDocument([]string{"abc"})
	r := doc.Region(&estree.SourceLocation{
		Start: estree.Position{Line: 1, Column: 2},
		End:   estree.Position{Line: 1, Column: 2},
	})
	assert.Equal(t, editor.Region{StartLine: 1, StartColumn: 3, EndLine: 1, EndColumn: 4}, r)
}

func TestDocument_Regions(t *testing.T) {
	doc := NewDocument([]string{"ab"})
	located := estree.New(estree.Identifier, estree.Range{Start: 0, End: 1}, estree.SourceLocation{
		Start: estree.Position{Line: 1, Column: 0},
		End:   estree.Position{Line: 1, Column: 1},
	})
	bare := &estree.Node{Type: estree.Identifier}
	assert.Len(t, doc.Regions([]*estree.Node{located, bare}), 1)
}

func TestUnitTable(t *testing.T) {
	src := "a★b\nc💩d"
	table := NewUnitTable(src)

	// bytes: a(0) ★(1-3) b(4) \n(5) c(6) 💩(7-10) d(11)
	assert.Equal(t, 0, table.Offset(0))
	assert.Equal(t, 1, table.Offset(1))
	assert.Equal(t, 2, table.Offset(4))
	assert.Equal(t, 4, table.Offset(6))
	assert.Equal(t, 5, table.Offset(7))
	assert.Equal(t, 7, table.Offset(11))
	assert.Equal(t, 8, table.Len())

	assert.Equal(t, estree.Position{Line: 1, Column: 2}, table.Position(4))
	assert.Equal(t, estree.Position{Line: 2, Column: 0}, table.Position(6))
	assert.Equal(t, estree.Position{Line: 2, Column: 3}, table.Position(11))

	r, loc := table.Span(7, 11)
	assert.Equal(t, estree.Range{Start: 5, End: 7}, r)
	assert.Equal(t, 1, loc.Start.Column)
	assert.Equal(t, 3, loc.End.Column)
}

func TestUnitTable_ASCII(t *testing.T) {
	table := NewUnitTable("line1\nline2")
	assert.Nil(t, table.units)
	assert.Equal(t, 7, table.Offset(7))
	assert.Equal(t, estree.Position{Line: 2, Column: 1}, table.Position(7))
	assert.Equal(t, 11, table.Offset(100))
}

func TestDocument_RegionText(t *testing.T) {
	d := NewDocument([]string{"const o = {", "  a: 1,", "};"})
	assert.Equal(t, "o", d.RegionText(editor.Region{StartLine: 1, StartColumn: 7, EndLine: 1, EndColumn: 8}))
	assert.Equal(t, "{\n  a: 1,\n}", d.RegionText(editor.Region{StartLine: 1, StartColumn: 11, EndLine: 3, EndColumn: 2}))
	// Columns past the line end are clamped.
	assert.Equal(t, "};", d.RegionText(editor.Region{StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 40}))
	assert.Empty(t, d.RegionText(editor.Region{StartLine: 9, StartColumn: 1, EndLine: 9, EndColumn: 2}))
}
