// Package editor defines the collaborators the highlight engine talks to: a
// read-only view of the host's buffers and a renderer for highlights,
// cursor moves and messages.
package editor

import (
	"context"
	"fmt"
)

// Cursor is an editor position: 1-based line, 1-based byte column.
type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Region is a highlight span in editor coordinates. Lines are 1-based,
// columns are 1-based byte columns and EndColumn is exclusive.
type Region struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Start returns the first position covered by the region.
func (r Region) Start() Cursor {
	return Cursor{Line: r.StartLine, Column: r.StartColumn}
}

// Compare orders cursors by line, then column.
func Compare(a, b Cursor) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	}
	return 0
}

func (r Region) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// Handle identifies a group of rendered highlight regions.
type Handle int

// NoHandle is never returned by a renderer.
const NoHandle Handle = -1

// Level is the severity of a user-visible message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText renders the level name in JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Message is a user-visible notice.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Info creates an informational message.
func Info(format string, args ...interface{}) Message {
	return Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

// Warning creates a warning message.
func Warning(format string, args ...interface{}) Message {
	return Message{Level: LevelWarning, Text: fmt.Sprintf(format, args...)}
}

// Error creates an error message.
func Error(format string, args ...interface{}) Message {
	return Message{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}

// Buffer is read-only access to the host editor's buffers.
type Buffer interface {
	CurrentBufferID(ctx context.Context) (int, error)
	// ChangeToken increases on every edit of the buffer.
	ChangeToken(ctx context.Context, bufferID int) (int64, error)
	ReadAllLines(ctx context.Context, bufferID int) ([]string, error)
	CursorPosition(ctx context.Context) (Cursor, error)
}

// Renderer applies side effects in the host editor.
type Renderer interface {
	AddHighlightRegions(ctx context.Context, group string, regions []Region) (Handle, error)
	ClearHighlightRegions(ctx context.Context, h Handle) error
	MoveCursor(ctx context.Context, line, column int) error
	ShowMessage(ctx context.Context, msg Message) error
}

// GroupDefiner is implemented by renderers that must declare a highlight
// group before regions can use it.
type GroupDefiner interface {
	DefineHighlightGroup(ctx context.Context, group, guifg, guibg string) error
}
