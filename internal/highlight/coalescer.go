package highlight

import (
	"context"
	"sync"
	"time"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
)

// Coalescer collapses bursts of re-highlight requests into a single run after
// a quiet period.
type Coalescer struct {
	run func(ctx context.Context) error

	// Debounce settings
	delay time.Duration
	timer *time.Timer
	mu    sync.Mutex

	// Latest request, if any
	pending    bool
	pendingCtx context.Context
	requests   int

	closed bool
	wg     sync.WaitGroup

	// Optional callback for test synchronization
	onComplete func(err error)
}

// NewCoalescer creates a coalescer that calls run once per burst.
func NewCoalescer(delay time.Duration, run func(ctx context.Context) error) *Coalescer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Coalescer{run: run, delay: delay}
}

// Schedule records a request and restarts the quiet period. The newest
// request's context replaces older ones; cancellation of the request itself
// does not cancel the run.
func (c *Coalescer) Schedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = true
	c.pendingCtx = context.WithoutCancel(ctx)
	c.requests++

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)

	debug.LogHighlight("scheduled re-highlight in %v (%d requests pending)", c.delay, c.requests)
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	if !c.pending || c.closed {
		c.mu.Unlock()
		return
	}
	ctx := c.pendingCtx
	requests := c.requests
	c.pending = false
	c.pendingCtx = nil
	c.requests = 0
	callback := c.onComplete
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	start := time.Now()
	err := c.run(ctx)
	if err != nil {
		debug.LogHighlight("re-highlight failed: %v", err)
	}
	debug.LogHighlight("coalesced %d requests into one re-highlight in %v", requests, time.Since(start))

	if callback != nil {
		callback(err)
	}
}

// Flush runs a pending request immediately.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.fire()
}

// Pending reports whether a request is waiting for its quiet period.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Shutdown drops pending requests and waits for a running one to finish.
func (c *Coalescer) Shutdown() {
	c.mu.Lock()
	c.closed = true
	c.pending = false
	c.pendingCtx = nil
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// SetDelay updates the quiet period for subsequent requests.
func (c *Coalescer) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.delay = d
	}
}

// SetOnComplete sets a callback invoked after each run (for testing).
func (c *Coalescer) SetOnComplete(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = callback
}
