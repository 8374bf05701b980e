package textpos

import (
	"strings"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// Document is one immutable buffer snapshot together with its line table.
type Document struct {
	Text  string
	Lines []string
	// LineStarts holds the UTF-16 offset of each line: the prefix sum of the
	// previous lines' lengths plus one for each terminator.
	LineStarts []int
	length     int
}

// NewDocument builds a snapshot from editor lines.
func NewDocument(lines []string) *Document {
	if len(lines) == 0 {
		lines = []string{""}
	}
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += UTF16Len(line) + 1
	}
	return &Document{
		Text:       strings.Join(lines, "\n"),
		Lines:      lines,
		LineStarts: starts,
		length:     offset - 1,
	}
}

// Len returns the text length in UTF-16 code units.
func (d *Document) Len() int {
	return d.length
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// Empty reports whether the text holds nothing but whitespace.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Offset converts a 1-based line and 1-based byte column into a 0-based
// UTF-16 offset. A line outside the document is an error; a column past the
// end of its line resolves to the line end.
func (d *Document) Offset(line, byteCol int) (int, error) {
	if line < 1 || line > len(d.Lines) {
		return 0, errors.NewPositionError(line, len(d.Lines))
	}
	if byteCol < 1 {
		byteCol = 1
	}
	return d.LineStarts[line-1] + ByteIndexToCharIndex(d.Lines[line-1], byteCol-1), nil
}

// CursorAt converts a 0-based UTF-16 offset back into an editor position.
func (d *Document) CursorAt(offset int) editor.Cursor {
	if offset < 0 {
		offset = 0
	}
	idx := 0
	for idx+1 < len(d.LineStarts) && d.LineStarts[idx+1] <= offset {
		idx++
	}
	col := offset - d.LineStarts[idx]
	return editor.Cursor{Line: idx + 1, Column: CharIndexToByteIndex(d.Lines[idx], col) + 1}
}

// Region converts a node location into an editor region. Single-line spans
// that would render empty are widened to one column.
func (d *Document) Region(loc *estree.SourceLocation) editor.Region {
	r := editor.Region{
		StartLine:   loc.Start.Line,
		StartColumn: d.byteColumn(loc.Start),
		EndLine:     loc.End.Line,
		EndColumn:   d.byteColumn(loc.End),
	}
	if r.EndLine < r.StartLine {
		r.EndLine = r.StartLine
	}
	if r.StartLine == r.EndLine && r.EndColumn <= r.StartColumn {
		r.EndColumn = r.StartColumn + 1
	}
	return r
}

// Regions converts the located nodes, skipping nodes without a location.
func (d *Document) Regions(nodes []*estree.Node) []editor.Region {
	out := make([]editor.Region, 0, len(nodes))
	for _, n := range nodes {
		if n.Loc == nil {
			continue
		}
		out = append(out, d.Region(n.Loc))
	}
	return out
}

func (d *Document) byteColumn(p estree.Position) int {
	if p.Line < 1 || p.Line > len(d.Lines) {
		return p.Column + 1
	}
	return CharIndexToByteIndex(d.Lines[p.Line-1], p.Column) + 1
}

// LineText returns a 1-based line, or "" when out of range.
func (d *Document) LineText(line int) string {
	if line < 1 || line > len(d.Lines) {
		return ""
	}
	return d.Lines[line-1]
}

// RegionText returns the source covered by r, joining lines with "\n".
// Columns past the end of a line are clamped.
func (d *Document) RegionText(r editor.Region) string {
	var sb strings.Builder
	for line := r.StartLine; line <= r.EndLine; line++ {
		text := d.LineText(line)
		from, to := 0, len(text)
		if line == r.StartLine {
			from = clampInt(r.StartColumn-1, 0, len(text))
		}
		if line == r.EndLine {
			to = clampInt(r.EndColumn-1, from, len(text))
		}
		if line > r.StartLine {
			sb.WriteByte('\n')
		}
		sb.WriteString(text[from:to])
	}
	return sb.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
