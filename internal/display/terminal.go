package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

// TabstopWidth is the width tabs are expanded to in source snippets.
const TabstopWidth = 4

// TextSource supplies the text regions refer to.
type TextSource interface {
	Text() string
}

// Terminal implements editor.Renderer by printing highlighted source
// snippets and messages to a writer.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	src    TextSource
	styles *Styles
	width  int

	next   editor.Handle
	live   map[editor.Handle][]editor.Region
	groups map[string]lipgloss.Style
	cursor editor.Cursor
}

// NewTerminal creates a renderer writing to out. styles may be nil.
func NewTerminal(out io.Writer, src TextSource, styles *Styles) *Terminal {
	if styles == nil {
		styles = NewStyles(false)
	}
	return &Terminal{
		out:    out,
		src:    src,
		styles: styles,
		width:  terminalWidth(out),
		next:   1,
		live:   make(map[editor.Handle][]editor.Region),
		groups: make(map[string]lipgloss.Style),
	}
}

// DefineHighlightGroup implements editor.GroupDefiner.
func (t *Terminal) DefineHighlightGroup(ctx context.Context, group, guifg, guibg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[group] = t.styles.MatchStyle(guifg, guibg)
	return nil
}

// AddHighlightRegions implements editor.Renderer.
func (t *Terminal) AddHighlightRegions(ctx context.Context, group string, regions []editor.Region) (editor.Handle, error) {
	if err := ctx.Err(); err != nil {
		return editor.NoHandle, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.next
	t.next++
	t.live[h] = append([]editor.Region(nil), regions...)

	style, ok := t.groups[group]
	if !ok {
		style = t.styles.Match
	}
	if err := t.printSnippets(regions, style); err != nil {
		return editor.NoHandle, err
	}
	return h, nil
}

// ClearHighlightRegions implements editor.Renderer.
func (t *Terminal) ClearHighlightRegions(ctx context.Context, h editor.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, h)
	return nil
}

// MoveCursor implements editor.Renderer.
func (t *Terminal) MoveCursor(ctx context.Context, line, column int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = editor.Cursor{Line: line, Column: column}
	_, err := fmt.Fprintln(t.out, t.styles.Dim.Render(fmt.Sprintf("→ %d:%d", line, column)))
	return err
}

// ShowMessage implements editor.Renderer.
func (t *Terminal) ShowMessage(ctx context.Context, msg editor.Message) error {
	var style lipgloss.Style
	switch msg.Level {
	case editor.LevelError:
		style = t.styles.Error
	case editor.LevelWarning:
		style = t.styles.Warning
	default:
		style = t.styles.Info
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "%s %s\n", style.Render(msg.Level.String()+":"), msg.Text)
	return err
}

// Regions returns every live region.
func (t *Terminal) Regions() []editor.Region {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []editor.Region
	for h := editor.Handle(1); h < t.next; h++ {
		out = append(out, t.live[h]...)
	}
	return out
}

// Cursor returns the last position the cursor was moved to.
func (t *Terminal) Cursor() editor.Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

func (t *Terminal) printSnippets(regions []editor.Region, match lipgloss.Style) error {
	if t.src == nil || len(regions) == 0 {
		return nil
	}
	lines := editor.SplitLines(t.src.Text())
	lineLen := func(line int) int {
		if line < 1 || line > len(lines) {
			return 0
		}
		return len(lines[line-1])
	}

	if n, ok := t.src.(interface{ Name() string }); ok && n.Name() != "" {
		if _, err := fmt.Fprintln(t.out, t.styles.FilePath.Render(n.Name())); err != nil {
			return err
		}
	}

	gutter := len(fmt.Sprint(len(lines)))
	var sb strings.Builder
	for _, r := range regions {
		for _, seg := range editor.Segments(r, lineLen) {
			if seg.Line < 1 || seg.Line > len(lines) {
				continue
			}
			t.writeSegment(&sb, lines[seg.Line-1], seg, gutter, match)
		}
	}
	_, err := io.WriteString(t.out, sb.String())
	return err
}

// writeSegment prints one source line with the segment styled, followed by
// a caret underline sized by display width.
func (t *Terminal) writeSegment(sb *strings.Builder, line string, seg editor.Segment, gutter int, match lipgloss.Style) {
	start := min(max(seg.Column-1, 0), len(line))
	end := min(start+seg.Length, len(line))

	before, col := expandTabs(0, line[:start])
	hit, col2 := expandTabs(col, line[start:end])
	rest, _ := expandTabs(col2, line[end:])

	budget := t.width - gutter - 3
	rest = truncate(rest, budget-col2)

	num := fmt.Sprintf("%*d", gutter, seg.Line)
	sb.WriteString(t.styles.LineNumber.Render(num))
	sb.WriteString(t.styles.Gutter.Render(" │ "))
	sb.WriteString(before)
	sb.WriteString(match.Render(hit))
	sb.WriteString(rest)
	sb.WriteByte('\n')

	carets := max(col2-col, 1)
	sb.WriteString(strings.Repeat(" ", gutter))
	sb.WriteString(t.styles.Gutter.Render(" │ "))
	sb.WriteString(strings.Repeat(" ", col))
	sb.WriteString(t.styles.Caret.Render(strings.Repeat("^", carets)))
	sb.WriteByte('\n')
}

// expandTabs replaces tabs with spaces up to the next tabstop, starting at
// display column. It returns the expanded text and the column after it.
func expandTabs(column int, text string) (string, int) {
	var sb strings.Builder
	for text != "" {
		next := text
		tab := strings.IndexByte(text, '\t')
		if tab >= 0 {
			next, text = text[:tab], text[tab+1:]
		} else {
			text = ""
		}
		sb.WriteString(next)
		column += uniseg.StringWidth(next)
		if tab >= 0 {
			n := TabstopWidth - column%TabstopWidth
			sb.WriteString(strings.Repeat(" ", n))
			column += n
		}
	}
	return sb.String(), column
}

// truncate cuts s to at most width display columns, marking the cut.
func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var sb strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		sb.WriteString(g.Str())
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}
