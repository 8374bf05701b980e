package textpos

import (
	"sort"
	"unicode/utf8"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// UnitTable maps UTF-8 byte offsets of a source string (as reported by
// tree-sitter) to UTF-16 offsets and line/column positions.
type UnitTable struct {
	// units[b] is the UTF-16 offset of byte b; nil for pure ASCII sources.
	units      []int
	lineStarts []int
	size       int
}

// NewUnitTable indexes src.
func NewUnitTable(src string) *UnitTable {
	t := &UnitTable{lineStarts: []int{0}, size: len(src)}
	ascii := true
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
		if src[i] >= utf8.RuneSelf {
			ascii = false
		}
	}
	if ascii {
		return t
	}

	t.units = make([]int, len(src)+1)
	cur := 0
	for b := 0; b < len(src); {
		r, size := utf8.DecodeRuneInString(src[b:])
		for k := 0; k < size; k++ {
			t.units[b+k] = cur
		}
		b += size
		cur += runeUnits(r)
	}
	t.units[len(src)] = cur
	return t
}

func (t *UnitTable) clamp(b int) int {
	if b < 0 {
		return 0
	}
	if b > t.size {
		return t.size
	}
	return b
}

// Offset returns the UTF-16 offset of byte offset b.
func (t *UnitTable) Offset(b int) int {
	b = t.clamp(b)
	if t.units == nil {
		return b
	}
	return t.units[b]
}

// Len returns the source length in UTF-16 code units.
func (t *UnitTable) Len() int {
	return t.Offset(t.size)
}

// Position returns the 1-based line and 0-based UTF-16 column of byte b.
func (t *UnitTable) Position(b int) estree.Position {
	b = t.clamp(b)
	idx := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > b }) - 1
	return estree.Position{
		Line:   idx + 1,
		Column: t.Offset(b) - t.Offset(t.lineStarts[idx]),
	}
}

// Span returns the UTF-16 range and location of the byte span [start, end).
func (t *UnitTable) Span(start, end int) (estree.Range, estree.SourceLocation) {
	return estree.Range{Start: t.Offset(start), End: t.Offset(end)},
		estree.SourceLocation{Start: t.Position(start), End: t.Position(end)}
}
