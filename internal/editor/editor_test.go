package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
	assert.Equal(t, []string{""}, SplitLines(""))
	assert.Equal(t, []string{"", ""}, SplitLines("\n\n"))
}

func TestMemoryBuffer_TokenAdvancesOnEdit(t *testing.T) {
	ctx := context.Background()
	buf := NewMemoryBuffer(1, "const a = 1;")

	id, err := buf.CurrentBufferID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	before, err := buf.ChangeToken(ctx, id)
	require.NoError(t, err)

	buf.SetText("const a = 2;")
	after, err := buf.ChangeToken(ctx, id)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	lines, err := buf.ReadAllLines(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"const a = 2;"}, lines)
	assert.Equal(t, 1, buf.Reads())
}

func TestMemoryBuffer_Replace(t *testing.T) {
	ctx := context.Background()
	buf := NewMemoryBuffer(1, "a")
	buf.SetCursor(1, 2)
	buf.Replace(7, "b.ts", "b\nc")

	id, _ := buf.CurrentBufferID(ctx)
	cur, _ := buf.CursorPosition(ctx)
	assert.Equal(t, 7, id)
	assert.Equal(t, "b.ts", buf.Name())
	assert.Equal(t, Cursor{Line: 1, Column: 1}, cur)
	assert.Equal(t, "b\nc", buf.Text())
}

func TestMemoryBuffer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryBuffer(1, "x").ReadAllLines(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	buf := NewMemoryBuffer(1, "a\nb")
	rec := NewRecorder(buf)

	h, err := rec.AddHighlightRegions(ctx, "SearchAst", []Region{{1, 1, 1, 2}})
	require.NoError(t, err)
	assert.NotEqual(t, NoHandle, h)
	assert.Len(t, rec.Regions(), 1)
	assert.Equal(t, "SearchAst", rec.Highlights()[0].Group)

	require.NoError(t, rec.ClearHighlightRegions(ctx, h))
	assert.Empty(t, rec.Regions())

	require.NoError(t, rec.MoveCursor(ctx, 2, 1))
	cur, _ := buf.CursorPosition(ctx)
	assert.Equal(t, Cursor{Line: 2, Column: 1}, cur)

	require.NoError(t, rec.ShowMessage(ctx, Info("Found %d matches", 2)))
	assert.Equal(t, "Found 2 matches", rec.LastMessage().Text)

	msgs, moves := rec.Drain()
	assert.Len(t, msgs, 1)
	assert.Len(t, moves, 1)
	assert.Empty(t, rec.Messages())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(Cursor{1, 5}, Cursor{2, 1}))
	assert.Equal(t, 1, Compare(Cursor{2, 3}, Cursor{2, 1}))
	assert.Equal(t, 0, Compare(Cursor{2, 1}, Cursor{2, 1}))
	assert.Equal(t, Cursor{3, 4}, Region{3, 4, 3, 9}.Start())
	assert.Equal(t, "3:4-3:9", Region{3, 4, 3, 9}.String())
}

func TestLevel_MarshalText(t *testing.T) {
	b, err := LevelWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(b))
	assert.Equal(t, LevelError, Error("x").Level)
	assert.Equal(t, LevelWarning, Warning("x").Level)
}

func TestSegments(t *testing.T) {
	lines := []string{"function f() {", "", "  return 1;", "}"}
	lineLen := func(line int) int { return len(lines[line-1]) }

	assert.Equal(t, []Segment{{Line: 1, Column: 10, Length: 1}},
		Segments(Region{StartLine: 1, StartColumn: 10, EndLine: 1, EndColumn: 11}, lineLen))

	got := Segments(Region{StartLine: 1, StartColumn: 14, EndLine: 4, EndColumn: 2}, lineLen)
	assert.Equal(t, []Segment{
		{Line: 1, Column: 14, Length: 1},
		{Line: 2, Column: 1, Length: 1},
		{Line: 3, Column: 1, Length: 11},
		{Line: 4, Column: 1, Length: 1},
	}, got)
	assert.Equal(t, [3]int{3, 1, 11}, got[2].Triple())

	// A span ending at column 1 of its last line does not reach into it.
	assert.Len(t, Segments(Region{StartLine: 3, StartColumn: 3, EndLine: 4, EndColumn: 1}, lineLen), 1)
}
