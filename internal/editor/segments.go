package editor

// Segment is one line's share of a region: a 1-based line, a 1-based byte
// column and a byte length. It is the unit Vim's matchaddpos() takes.
type Segment struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Length int `json:"length"`
}

// Triple returns the segment as matchaddpos() expects it.
func (s Segment) Triple() [3]int {
	return [3]int{s.Line, s.Column, s.Length}
}

// Segments splits a region into per-line segments. lineLen reports the byte
// length of a 1-based line. Every segment covers at least one column so
// that empty lines inside a span stay visible.
func Segments(r Region, lineLen func(line int) int) []Segment {
	if r.EndLine <= r.StartLine {
		n := r.EndColumn - r.StartColumn
		if n < 1 {
			n = 1
		}
		return []Segment{{Line: r.StartLine, Column: r.StartColumn, Length: n}}
	}

	out := make([]Segment, 0, r.EndLine-r.StartLine+1)
	first := lineLen(r.StartLine) - r.StartColumn + 1
	out = append(out, Segment{Line: r.StartLine, Column: r.StartColumn, Length: max(first, 1)})
	for line := r.StartLine + 1; line < r.EndLine; line++ {
		out = append(out, Segment{Line: line, Column: 1, Length: max(lineLen(line), 1)})
	}
	if r.EndColumn > 1 {
		out = append(out, Segment{Line: r.EndLine, Column: 1, Length: r.EndColumn - 1})
	}
	return out
}
