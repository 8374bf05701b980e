package editor

import (
	"context"
	"strings"
	"sync"
)

// MemoryBuffer is an in-process Buffer holding a single text snapshot. It
// backs headless sessions (MCP, CLI) and tests.
type MemoryBuffer struct {
	mu     sync.Mutex
	id     int
	name   string
	lines  []string
	token  int64
	cursor Cursor
	reads  int
}

// NewMemoryBuffer creates a buffer with the cursor on the first character.
func NewMemoryBuffer(id int, text string) *MemoryBuffer {
	return &MemoryBuffer{
		id:     id,
		lines:  SplitLines(text),
		token:  1,
		cursor: Cursor{Line: 1, Column: 1},
	}
}

// SplitLines splits text the way an editor presents it: one entry per line,
// without terminators. A trailing newline does not add an empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// SetText replaces the content and bumps the change token.
func (b *MemoryBuffer) SetText(text string) {
	b.SetLines(SplitLines(text))
}

// SetLines replaces the content and bumps the change token.
func (b *MemoryBuffer) SetLines(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append([]string(nil), lines...)
	b.token++
}

// Replace swaps in a different buffer, as if the user switched to it.
func (b *MemoryBuffer) Replace(id int, name, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.id = id
	b.name = name
	b.lines = SplitLines(text)
	b.token++
	b.cursor = Cursor{Line: 1, Column: 1}
}

// SetCursor moves the cursor.
func (b *MemoryBuffer) SetCursor(line, column int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = Cursor{Line: line, Column: column}
}

// Name returns the path or label the buffer was loaded from.
func (b *MemoryBuffer) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// Text returns the buffer content joined with newlines.
func (b *MemoryBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// Reads returns how many times ReadAllLines was called.
func (b *MemoryBuffer) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

// CurrentBufferID implements Buffer.
func (b *MemoryBuffer) CurrentBufferID(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id, ctx.Err()
}

// ChangeToken implements Buffer.
func (b *MemoryBuffer) ChangeToken(ctx context.Context, bufferID int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, ctx.Err()
}

// ReadAllLines implements Buffer.
func (b *MemoryBuffer) ReadAllLines(ctx context.Context, bufferID int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return append([]string(nil), b.lines...), nil
}

// CursorPosition implements Buffer.
func (b *MemoryBuffer) CursorPosition(ctx context.Context) (Cursor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor, ctx.Err()
}
