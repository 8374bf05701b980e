package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

// DefaultCallTimeout bounds how long the server waits for the editor to
// answer an expr or call frame.
const DefaultCallTimeout = 5 * time.Second

// errChannelClosed is returned for calls pending when the connection ends.
var errChannelClosed = errors.New("channel closed")

// vimClient speaks Vim's JSON channel protocol. Requests from the editor
// arrive as [id, payload] with positive ids; the server asks the editor for
// state with ["expr", expr, id] and ["call", func, args, id] frames using
// negative ids, and the editor answers with [id, result]. ["ex", cmd] and
// ["redraw", ""] frames get no answer.
//
// vimClient implements editor.Buffer, editor.Renderer and
// editor.GroupDefiner on top of those frames.
type vimClient struct {
	w       io.Writer
	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan json.RawMessage
	done    chan struct{}
	closed  bool

	timeout time.Duration

	// Last buffer seen, used for Name() and multi-line match segments.
	bufMu sync.Mutex
	bufnr int
	name  string
	lines []string
}

func newVimClient(w io.Writer) *vimClient {
	return &vimClient{
		w:       w,
		pending: make(map[int]chan json.RawMessage),
		done:    make(chan struct{}),
		timeout: DefaultCallTimeout,
	}
}

// send writes one frame.
func (c *vimClient) send(frame ...interface{}) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// request sends a frame that expects an answer and waits for it.
func (c *vimClient) request(ctx context.Context, frame ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errChannelClosed
	}
	c.nextID--
	if c.nextID == math.MinInt32 {
		c.nextID = -1
	}
	id := c.nextID
	ch := make(chan json.RawMessage, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(append(frame, id)...); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		if string(result) == `"ERROR"` {
			return nil, fmt.Errorf("editor failed to evaluate %v", frame[1])
		}
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, errChannelClosed
	case <-timer.C:
		return nil, fmt.Errorf("editor did not answer %v within %v", frame[1], c.timeout)
	}
}

// deliver routes an answer to its pending request. It reports whether a
// request was waiting for it.
func (c *vimClient) deliver(id int, result json.RawMessage) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		debug.LogServer("dropping answer for unknown id %d", id)
		return false
	}
	ch <- result
	return true
}

// close fails every pending and future request.
func (c *vimClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *vimClient) expr(ctx context.Context, expr string, out interface{}) error {
	raw, err := c.request(ctx, "expr", expr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected answer to %s: %w", expr, err)
	}
	return nil
}

func (c *vimClient) call(ctx context.Context, fn string, args []interface{}, out interface{}) error {
	raw, err := c.request(ctx, "call", fn, args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected answer to %s(): %w", fn, err)
	}
	return nil
}

func (c *vimClient) ex(cmd string) error {
	return c.send("ex", cmd)
}

// CurrentBufferID implements editor.Buffer.
func (c *vimClient) CurrentBufferID(ctx context.Context) (int, error) {
	var buf struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := c.expr(ctx, `{'id': bufnr('%'), 'name': expand('%:p')}`, &buf); err != nil {
		return 0, err
	}
	c.bufMu.Lock()
	if buf.ID != c.bufnr {
		c.lines = nil
	}
	c.bufnr = buf.ID
	c.name = buf.Name
	c.bufMu.Unlock()
	return buf.ID, nil
}

// ChangeToken implements editor.Buffer with b:changedtick.
func (c *vimClient) ChangeToken(ctx context.Context, bufferID int) (int64, error) {
	var tick int64
	if err := c.expr(ctx, fmt.Sprintf("getbufvar(%d, 'changedtick')", bufferID), &tick); err != nil {
		return 0, err
	}
	return tick, nil
}

// ReadAllLines implements editor.Buffer.
func (c *vimClient) ReadAllLines(ctx context.Context, bufferID int) ([]string, error) {
	var lines []string
	if err := c.expr(ctx, fmt.Sprintf("getbufline(%d, 1, '$')", bufferID), &lines); err != nil {
		return nil, err
	}
	c.bufMu.Lock()
	if bufferID == c.bufnr {
		c.lines = lines
	}
	c.bufMu.Unlock()
	return lines, nil
}

// CursorPosition implements editor.Buffer. Vim's col('.') is a 1-based
// byte column, which is what regions use.
func (c *vimClient) CursorPosition(ctx context.Context) (editor.Cursor, error) {
	var pos [2]int
	if err := c.expr(ctx, "[line('.'), col('.')]", &pos); err != nil {
		return editor.Cursor{}, err
	}
	return editor.Cursor{Line: pos[0], Column: pos[1]}, nil
}

// Name returns the full path of the last buffer seen.
func (c *vimClient) Name() string {
	c.bufMu.Lock()
	defer c.bufMu.Unlock()
	return c.name
}

// DefineHighlightGroup implements editor.GroupDefiner.
func (c *vimClient) DefineHighlightGroup(ctx context.Context, group, guifg, guibg string) error {
	return c.ex(fmt.Sprintf("highlight default %s guifg=%s guibg=%s", group, guifg, guibg))
}

// AddHighlightRegions implements editor.Renderer with matchaddpos().
func (c *vimClient) AddHighlightRegions(ctx context.Context, group string, regions []editor.Region) (editor.Handle, error) {
	pos := c.positions(regions)
	var id int
	if err := c.call(ctx, "matchaddpos", []interface{}{group, pos}, &id); err != nil {
		return editor.NoHandle, err
	}
	if id < 0 {
		return editor.NoHandle, fmt.Errorf("matchaddpos rejected %d positions", len(pos))
	}
	if err := c.send("redraw", ""); err != nil {
		return editor.Handle(id), err
	}
	return editor.Handle(id), nil
}

// positions converts regions to matchaddpos() [line, col, len] triples.
func (c *vimClient) positions(regions []editor.Region) [][3]int {
	c.bufMu.Lock()
	lines := c.lines
	c.bufMu.Unlock()
	lineLen := func(line int) int {
		if line < 1 || line > len(lines) {
			// Vim clips lengths past the end of the line.
			return math.MaxInt32
		}
		return len(lines[line-1])
	}

	var out [][3]int
	for _, r := range regions {
		for _, seg := range editor.Segments(r, lineLen) {
			out = append(out, seg.Triple())
		}
	}
	return out
}

// ClearHighlightRegions implements editor.Renderer.
func (c *vimClient) ClearHighlightRegions(ctx context.Context, h editor.Handle) error {
	return c.ex(fmt.Sprintf("silent! call matchdelete(%d)", h))
}

// MoveCursor implements editor.Renderer.
func (c *vimClient) MoveCursor(ctx context.Context, line, column int) error {
	return c.ex(fmt.Sprintf("call cursor(%d, %d)", line, column))
}

// ShowMessage implements editor.Renderer.
func (c *vimClient) ShowMessage(ctx context.Context, msg editor.Message) error {
	hl := "None"
	switch msg.Level {
	case editor.LevelWarning:
		hl = "WarningMsg"
	case editor.LevelError:
		hl = "ErrorMsg"
	}
	return c.ex(fmt.Sprintf("echohl %s | echomsg %s | echohl None", hl, vimString(msg.Text)))
}

// vimString quotes s as a Vim single-quoted string literal.
func vimString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
