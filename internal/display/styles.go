package display

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultTermWidth = 100

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	// Message levels
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Source snippets
	FilePath   lipgloss.Style
	LineNumber lipgloss.Style
	Gutter     lipgloss.Style
	Match      lipgloss.Style
	Caret      lipgloss.Style

	// AST dumps
	Type  lipgloss.Style
	Key   lipgloss.Style
	Range lipgloss.Style
	Value lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style

	color bool
}

// NewStyles creates styles with or without color.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func newColorStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),

		FilePath:   lipgloss.NewStyle().Bold(true),
		LineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Gutter:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Match:      lipgloss.NewStyle().Foreground(lipgloss.Color("#272822")).Background(lipgloss.Color("#f92672")),
		Caret:      lipgloss.NewStyle().Foreground(lipgloss.Color("13")),

		Type:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Key:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Range: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),

		Dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: lipgloss.NewStyle().Bold(true),

		color: true,
	}
}

func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Error:      plain,
		Warning:    plain,
		Info:       plain,
		FilePath:   plain,
		LineNumber: plain,
		Gutter:     plain,
		Match:      plain,
		Caret:      plain,
		Type:       plain,
		Key:        plain,
		Range:      plain,
		Value:      plain,
		Dim:        plain,
		Bold:       plain,
	}
}

// Color reports whether the styles emit escape sequences.
func (s *Styles) Color() bool {
	return s.color
}

// MatchStyle builds the style for a highlight group from Vim-style gui
// colors. "NONE" leaves that side unset.
func (s *Styles) MatchStyle(guifg, guibg string) lipgloss.Style {
	if !s.color {
		return lipgloss.NewStyle()
	}
	st := lipgloss.NewStyle()
	if guifg != "" && guifg != "NONE" {
		st = st.Foreground(lipgloss.Color(guifg))
	}
	if guibg != "" && guibg != "NONE" {
		st = st.Background(lipgloss.Color(guibg))
	}
	return st
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// terminalWidth returns the width of the terminal behind writer, or a default.
func terminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
