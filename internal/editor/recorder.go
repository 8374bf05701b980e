package editor

import (
	"context"
	"sort"
	"sync"
)

// Highlight is one group of regions added through a Renderer.
type Highlight struct {
	Handle  Handle   `json:"handle"`
	Group   string   `json:"group"`
	Regions []Region `json:"regions"`
}

// Recorder is a Renderer that keeps every side effect in memory. When built
// with a MemoryBuffer, cursor moves are applied to that buffer so navigation
// can be chained.
type Recorder struct {
	mu         sync.Mutex
	buf        *MemoryBuffer
	next       Handle
	highlights map[Handle]Highlight
	messages   []Message
	moves      []Cursor
	groups     map[string]string
}

// NewRecorder creates a recorder. buf may be nil.
func NewRecorder(buf *MemoryBuffer) *Recorder {
	return &Recorder{
		buf:        buf,
		next:       1,
		highlights: make(map[Handle]Highlight),
		groups:     make(map[string]string),
	}
}

// DefineHighlightGroup implements GroupDefiner.
func (r *Recorder) DefineHighlightGroup(ctx context.Context, group, guifg, guibg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group] = "guifg=" + guifg + " guibg=" + guibg
	return nil
}

// Group returns the attributes a group was defined with, or "".
func (r *Recorder) Group(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[name]
}

// AddHighlightRegions implements Renderer.
func (r *Recorder) AddHighlightRegions(ctx context.Context, group string, regions []Region) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return NoHandle, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.highlights[h] = Highlight{Handle: h, Group: group, Regions: append([]Region(nil), regions...)}
	return h, nil
}

// ClearHighlightRegions implements Renderer.
func (r *Recorder) ClearHighlightRegions(ctx context.Context, h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.highlights, h)
	return nil
}

// MoveCursor implements Renderer.
func (r *Recorder) MoveCursor(ctx context.Context, line, column int) error {
	r.mu.Lock()
	r.moves = append(r.moves, Cursor{Line: line, Column: column})
	buf := r.buf
	r.mu.Unlock()
	if buf != nil {
		buf.SetCursor(line, column)
	}
	return nil
}

// ShowMessage implements Renderer.
func (r *Recorder) ShowMessage(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Highlights returns the live highlight groups ordered by handle.
func (r *Recorder) Highlights() []Highlight {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Highlight, 0, len(r.highlights))
	for _, h := range r.highlights {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Regions returns every live region.
func (r *Recorder) Regions() []Region {
	var out []Region
	for _, h := range r.Highlights() {
		out = append(out, h.Regions...)
	}
	return out
}

// Messages returns all messages shown so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// LastMessage returns the most recent message, or the zero Message.
func (r *Recorder) LastMessage() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}
	}
	return r.messages[len(r.messages)-1]
}

// Moves returns all cursor moves so far.
func (r *Recorder) Moves() []Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cursor(nil), r.moves...)
}

// Drain returns and forgets the recorded messages and moves.
func (r *Recorder) Drain() ([]Message, []Cursor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs, moves := r.messages, r.moves
	r.messages, r.moves = nil, nil
	return msgs, moves
}
