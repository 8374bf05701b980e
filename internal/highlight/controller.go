// Package highlight keeps the matches of the active selector rendered in the
// editor and moves the cursor between them.
package highlight

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/query"
)

// Highlight defaults.
const (
	DefaultGroup    = "SearchAst"
	DefaultGuiFG    = "#272822"
	DefaultGuiBG    = "#f92672"
	DefaultDebounce = 100 * time.Millisecond
)

// Options configure a Controller.
type Options struct {
	Group    string
	GuiFG    string
	GuiBG    string
	Debounce time.Duration
}

// DefaultOptions returns the stock highlight settings.
func DefaultOptions() Options {
	return Options{
		Group:    DefaultGroup,
		GuiFG:    DefaultGuiFG,
		GuiBG:    DefaultGuiBG,
		Debounce: DefaultDebounce,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Group == "" {
		o.Group = d.Group
	}
	if o.GuiFG == "" {
		o.GuiFG = d.GuiFG
	}
	if o.GuiBG == "" {
		o.GuiBG = d.GuiBG
	}
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	return o
}

// State is the controller's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateHighlighting
)

func (s State) String() string {
	if s == StateHighlighting {
		return "highlighting"
	}
	return "idle"
}

// Status is a snapshot of the controller for hosts that report it.
type Status struct {
	State    string          `json:"state"`
	Selector string          `json:"selector"`
	Group    string          `json:"group"`
	Regions  []editor.Region `json:"regions"`
}

// Controller renders the matches of the active selector and navigates
// between them. Operations are serialized; at most one runs at a time.
type Controller struct {
	cache *cache.BufferCache
	buf   editor.Buffer
	out   editor.Renderer
	opts  Options

	mu       sync.Mutex
	state    atomic.Int32
	selector string
	handle   editor.Handle
	regions  []editor.Region
	index    *navIndex
	defined  bool

	coalescer *Coalescer
}

// NewController creates a controller reading buffers through c and rendering
// through out.
func NewController(c *cache.BufferCache, out editor.Renderer, opts Options) *Controller {
	ctrl := &Controller{
		cache:  c,
		buf:    c.Buffer(),
		out:    out,
		opts:   opts.withDefaults(),
		handle: editor.NoHandle,
		index:  newNavIndex(nil),
	}
	ctrl.coalescer = NewCoalescer(ctrl.opts.Debounce, ctrl.ReHighlightNow)
	return ctrl
}

// Coalescer exposes the re-highlight scheduler.
func (c *Controller) Coalescer() *Coalescer {
	return c.coalescer
}

// Close stops pending re-highlights.
func (c *Controller) Close() {
	c.coalescer.Shutdown()
}

// Selector returns the active selector.
func (c *Controller) Selector() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector
}

// Status returns the current state, selector and regions.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:    State(c.state.Load()).String(),
		Selector: c.selector,
		Group:    c.opts.Group,
		Regions:  append([]editor.Region(nil), c.regions...),
	}
}

// Highlight makes selector the active selector, renders its matches and
// moves the cursor to the first match at or after it. An empty selector only
// clears the current highlight. User-facing outcomes are reported as
// messages; the returned error is reserved for host failures.
func (c *Controller) Highlight(ctx context.Context, selector string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateHighlighting))
	defer c.state.Store(int32(StateIdle))

	ok, err := c.render(ctx, selector)
	if err != nil || !ok {
		return err
	}
	cur, err := c.buf.CursorPosition(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	return c.focus(ctx, c.index.atOrAfter(cur))
}

// ReHighlight schedules a re-run of the active selector after the debounce
// period. Bursts of calls cause a single run.
func (c *Controller) ReHighlight(ctx context.Context) {
	if c.Selector() == "" {
		return
	}
	c.coalescer.Schedule(ctx)
}

// ReHighlightNow re-runs the active selector against the current buffer
// without moving the cursor. It is a no-op without an active selector.
func (c *Controller) ReHighlightNow(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selector == "" {
		return nil
	}

	c.state.Store(int32(StateHighlighting))
	defer c.state.Store(int32(StateIdle))

	_, err := c.render(ctx, c.selector)
	return err
}

// Reset clears the highlight and the active selector.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selector = ""
	return c.clear(ctx)
}

// FocusNext moves the cursor to the first match strictly after it.
func (c *Controller) FocusNext(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, err := c.buf.CursorPosition(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	return c.focus(ctx, c.index.after(cur))
}

// FocusPrev moves the cursor to the last match strictly before it.
func (c *Controller) FocusPrev(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, err := c.buf.CursorPosition(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	return c.focus(ctx, c.index.before(cur))
}

// render replaces the rendered regions with the matches of selector. It
// reports whether any region was rendered.
func (c *Controller) render(ctx context.Context, selector string) (bool, error) {
	if err := c.clear(ctx); err != nil {
		return false, err
	}
	c.selector = selector
	if selector == "" {
		return false, nil
	}
	if err := c.defineGroup(ctx); err != nil {
		return false, err
	}

	start := time.Now()
	ast, entry, err := c.cache.Current(ctx)
	switch {
	case stderrors.Is(err, errors.ErrEmptyBuffer):
		return false, c.show(ctx, editor.Info("Buffer is empty"))
	case errors.IsParse(err):
		debug.LogHighlight("parse failed: %v", err)
		return false, c.show(ctx, editor.Warning("Failed to parse current buffer"))
	case err != nil:
		return false, err
	}

	sel, err := query.Compile(selector)
	if err != nil {
		return false, c.invalid(ctx, selector, err)
	}
	nodes, err := sel.Match(ast)
	if err != nil {
		return false, c.invalid(ctx, selector, err)
	}
	if len(nodes) == 0 {
		return false, c.show(ctx, editor.Warning("No matches found for selector: %s%s", selector, hint(sel, ast)))
	}

	regions := entry.Doc.Regions(nodes)
	sortRegions(regions)
	h, err := c.out.AddHighlightRegions(ctx, c.opts.Group, regions)
	if err != nil {
		return false, fmt.Errorf("failed to render %d regions: %w", len(regions), err)
	}
	c.handle = h
	c.regions = regions
	c.index = newNavIndex(regions)
	debug.LogHighlight("%q: %d matches, %d positions in %v", selector, len(nodes), c.index.len(), time.Since(start))

	return true, c.show(ctx, editor.Info("Found %d matches", len(nodes)))
}

// invalid drops the active selector so later edits do not repeat the failure.
func (c *Controller) invalid(ctx context.Context, selector string, err error) error {
	debug.LogHighlight("invalid selector %q: %v", selector, err)
	c.selector = ""
	return c.show(ctx, editor.Error("Invalid selector: %s", selector))
}

// hint suggests known type names for misspelled ones.
func hint(sel *query.Selector, ast *estree.Node) string {
	unknown := sel.UnknownTypes(estree.Types(ast))
	if len(unknown) == 0 {
		return ""
	}
	known := query.KnownTypes()
	var parts []string
	for _, name := range unknown {
		if _, ok := estree.VisitorKeys[estree.Type(name)]; ok {
			continue
		}
		if near := query.DidYouMean(name, known, 1); len(near) > 0 {
			parts = append(parts, fmt.Sprintf("%s -> %s", name, near[0]))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (did you mean " + strings.Join(parts, ", ") + "?)"
}

func (c *Controller) clear(ctx context.Context) error {
	h := c.handle
	c.handle = editor.NoHandle
	c.regions = nil
	c.index = newNavIndex(nil)
	if h == editor.NoHandle {
		return nil
	}
	if err := c.out.ClearHighlightRegions(ctx, h); err != nil {
		return fmt.Errorf("failed to clear highlight %d: %w", h, err)
	}
	return nil
}

func (c *Controller) defineGroup(ctx context.Context) error {
	if c.defined {
		return nil
	}
	d, ok := c.out.(editor.GroupDefiner)
	if !ok {
		c.defined = true
		return nil
	}
	if err := d.DefineHighlightGroup(ctx, c.opts.Group, c.opts.GuiFG, c.opts.GuiBG); err != nil {
		return fmt.Errorf("failed to define highlight group %s: %w", c.opts.Group, err)
	}
	c.defined = true
	return nil
}

func (c *Controller) focus(ctx context.Context, idx int) error {
	if idx < 0 || idx >= len(c.regions) {
		return c.show(ctx, editor.Info("No more matches"))
	}
	r := c.regions[idx]
	if err := c.out.MoveCursor(ctx, r.StartLine, r.StartColumn); err != nil {
		return fmt.Errorf("failed to move cursor: %w", err)
	}
	return c.show(ctx, editor.Info("Match %d/%d", idx+1, len(c.regions)))
}

func (c *Controller) show(ctx context.Context, msg editor.Message) error {
	return c.out.ShowMessage(ctx, msg)
}
