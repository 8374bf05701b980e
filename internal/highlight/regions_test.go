package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

func at(line, col int) editor.Cursor {
	return editor.Cursor{Line: line, Column: col}
}

func region(line, col, endCol int) editor.Region {
	return editor.Region{StartLine: line, StartColumn: col, EndLine: line, EndColumn: endCol}
}

func TestSortRegions(t *testing.T) {
	regions := []editor.Region{region(5, 3, 4), region(2, 1, 9), region(2, 1, 3), region(1, 7, 8)}
	sortRegions(regions)
	assert.Equal(t, []editor.Region{region(1, 7, 8), region(2, 1, 3), region(2, 1, 9), region(5, 3, 4)}, regions)
}

func TestNavIndex(t *testing.T) {
	x := newNavIndex([]editor.Region{region(2, 1, 3), region(2, 1, 9), region(5, 3, 4), region(9, 1, 2)})

	assert.Equal(t, 3, x.len())
	assert.Equal(t, 0, x.atOrAfter(at(1, 1)))
	assert.Equal(t, 0, x.atOrAfter(at(2, 1)))
	assert.Equal(t, 2, x.after(at(2, 1)))
	assert.Equal(t, 2, x.after(at(5, 2)))
	assert.Equal(t, 3, x.after(at(5, 3)))
	assert.Equal(t, -1, x.after(at(9, 1)))
	assert.Equal(t, 1, x.before(at(5, 3)))
	assert.Equal(t, 2, x.before(at(5, 4)))
	assert.Equal(t, -1, x.before(at(2, 1)))
	assert.Equal(t, -1, x.before(at(0, 0)))
}

func TestNavIndex_Empty(t *testing.T) {
	x := newNavIndex(nil)
	assert.Equal(t, -1, x.after(at(1, 1)))
	assert.Equal(t, -1, x.before(at(10, 1)))
	assert.Equal(t, -1, x.atOrAfter(at(1, 1)))
}
