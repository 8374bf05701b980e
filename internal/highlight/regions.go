package highlight

import (
	"sort"

	"github.com/tidwall/btree"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

// navIndex orders match regions by start position for next/previous seeks.
// Keys pack (line, column) into one integer so the tree compares them
// lexicographically.
type navIndex struct {
	tree btree.Map[uint64, span]
}

// span holds the first and last region index sharing a start position.
type span struct {
	first, last int
}

func packPos(c editor.Cursor) uint64 {
	line, col := c.Line, c.Column
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return uint64(uint32(line))<<32 | uint64(uint32(col))
}

// sortRegions orders regions by start, then end, keeping document order for
// equal regions.
func sortRegions(regions []editor.Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		if c := editor.Compare(regions[i].Start(), regions[j].Start()); c != 0 {
			return c < 0
		}
		a := editor.Cursor{Line: regions[i].EndLine, Column: regions[i].EndColumn}
		b := editor.Cursor{Line: regions[j].EndLine, Column: regions[j].EndColumn}
		return editor.Compare(a, b) < 0
	})
}

// newNavIndex indexes regions, which must already be sorted.
func newNavIndex(regions []editor.Region) *navIndex {
	x := &navIndex{}
	for i, r := range regions {
		key := packPos(r.Start())
		if s, ok := x.tree.Get(key); ok {
			s.last = i
			x.tree.Set(key, s)
			continue
		}
		x.tree.Set(key, span{first: i, last: i})
	}
	return x
}

// after returns the first region starting strictly after c, or -1.
func (x *navIndex) after(c editor.Cursor) int {
	return x.ascend(packPos(c) + 1)
}

// atOrAfter returns the first region starting at or after c, or -1.
func (x *navIndex) atOrAfter(c editor.Cursor) int {
	return x.ascend(packPos(c))
}

func (x *navIndex) ascend(pivot uint64) int {
	idx := -1
	x.tree.Ascend(pivot, func(_ uint64, s span) bool {
		idx = s.first
		return false
	})
	return idx
}

// before returns the last region starting strictly before c, or -1.
func (x *navIndex) before(c editor.Cursor) int {
	key := packPos(c)
	if key == 0 {
		return -1
	}
	idx := -1
	x.tree.Descend(key-1, func(_ uint64, s span) bool {
		idx = s.last
		return false
	})
	return idx
}

func (x *navIndex) len() int {
	return x.tree.Len()
}
