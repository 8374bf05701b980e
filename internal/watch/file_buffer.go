// Package watch provides an editor buffer backed by a file on disk that
// follows external edits through fsnotify.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/security"
)

// FileBuffer implements editor.Buffer over a single file. The change token
// only moves when the content hash changes, so saves that rewrite identical
// bytes keep the cached AST.
type FileBuffer struct {
	id        int
	path      string
	validator *security.FileValidator

	mu     sync.RWMutex
	lines  []string
	hash   uint64
	token  int64
	cursor editor.Cursor

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Watch mode statistics
	statsMu         sync.RWMutex
	eventsProcessed int64
	reloads         int64
	errorCount      int64
	lastEventTime   time.Time
}

// Stats summarizes watch activity.
type Stats struct {
	EventsProcessed int64     `json:"events_processed"`
	Reloads         int64     `json:"reloads"`
	Errors          int64     `json:"errors"`
	LastEvent       time.Time `json:"last_event"`
	Token           int64     `json:"token"`
}

// Option configures a FileBuffer.
type Option func(*FileBuffer)

// WithValidator checks the file before every load.
func WithValidator(v *security.FileValidator) Option {
	return func(b *FileBuffer) { b.validator = v }
}

// Open loads path into a buffer with the given id.
func Open(id int, path string, opts ...Option) (*FileBuffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewFileError("resolve", path, err)
	}
	b := &FileBuffer{
		id:     id,
		path:   abs,
		cursor: editor.Cursor{Line: 1, Column: 1},
	}
	for _, opt := range opts {
		opt(b)
	}
	if _, err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload re-reads the file and reports whether its content changed.
func (b *FileBuffer) Reload() (bool, error) {
	content, err := b.read()
	if err != nil {
		return false, err
	}
	sum := xxhash.Sum64(content)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token > 0 && sum == b.hash {
		return false, nil
	}
	b.lines = editor.SplitLines(string(content))
	b.hash = sum
	b.token++
	return true, nil
}

func (b *FileBuffer) read() ([]byte, error) {
	if b.validator != nil {
		return b.validator.ReadFile(b.path)
	}
	content, err := os.ReadFile(b.path)
	if err != nil {
		return nil, errors.NewFileError("read", b.path, err)
	}
	return content, nil
}

// Watch follows the file until Stop is called, calling onChange after every
// reload that changed the content. The parent directory is watched so that
// editors saving through a rename are seen.
func (b *FileBuffer) Watch(onChange func(ctx context.Context)) error {
	b.mu.Lock()
	if b.watcher != nil {
		b.mu.Unlock()
		return fmt.Errorf("already watching %s", b.path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(b.path)); err != nil {
		w.Close()
		b.mu.Unlock()
		return errors.NewFileError("watch", filepath.Dir(b.path), err)
	}
	b.watcher = w
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.mu.Unlock()

	debug.LogWatch("watching %s", b.path)

	b.wg.Add(1)
	go b.processEvents(onChange)
	return nil
}

// Stop ends watching and waits for the event loop to exit. It is safe to
// call more than once.
func (b *FileBuffer) Stop() error {
	b.mu.Lock()
	w, cancel := b.watcher, b.cancel
	b.watcher = nil
	b.mu.Unlock()
	if w == nil {
		return nil
	}

	cancel()
	err := w.Close()
	b.wg.Wait()
	debug.LogWatch("stopped watching %s", b.path)
	return err
}

func (b *FileBuffer) processEvents(onChange func(ctx context.Context)) {
	defer b.wg.Done()

	b.mu.RLock()
	w, ctx := b.watcher, b.ctx
	b.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			b.handleEvent(ctx, event, onChange)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			b.statsMu.Lock()
			b.errorCount++
			b.statsMu.Unlock()
			debug.LogWatch("watcher error: %v", err)
		}
	}
}

func (b *FileBuffer) handleEvent(ctx context.Context, event fsnotify.Event, onChange func(ctx context.Context)) {
	if filepath.Clean(event.Name) != b.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		debug.LogWatch("ignoring %v for %s", event.Op, event.Name)
		return
	}

	b.statsMu.Lock()
	b.eventsProcessed++
	b.lastEventTime = time.Now()
	b.statsMu.Unlock()

	changed, err := b.Reload()
	if err != nil {
		// A writer truncated the file or it is between rename steps; the
		// next event carries the final content.
		b.statsMu.Lock()
		b.errorCount++
		b.statsMu.Unlock()
		debug.LogWatch("reload failed: %v", err)
		return
	}
	if !changed {
		return
	}

	b.statsMu.Lock()
	b.reloads++
	b.statsMu.Unlock()
	debug.LogWatch("reloaded %s", b.path)

	if onChange != nil {
		onChange(ctx)
	}
}

// Stats returns watch counters.
func (b *FileBuffer) Stats() Stats {
	b.statsMu.RLock()
	defer b.statsMu.RUnlock()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		EventsProcessed: b.eventsProcessed,
		Reloads:         b.reloads,
		Errors:          b.errorCount,
		LastEvent:       b.lastEventTime,
		Token:           b.token,
	}
}

// Name returns the absolute path of the file.
func (b *FileBuffer) Name() string {
	return b.path
}

// Text returns the last loaded content joined with newlines.
func (b *FileBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// SetCursor moves the cursor used by navigation and inspection.
func (b *FileBuffer) SetCursor(line, column int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = editor.Cursor{Line: line, Column: column}
}

// CurrentBufferID implements editor.Buffer.
func (b *FileBuffer) CurrentBufferID(ctx context.Context) (int, error) {
	return b.id, ctx.Err()
}

// ChangeToken implements editor.Buffer.
func (b *FileBuffer) ChangeToken(ctx context.Context, bufferID int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if bufferID != b.id {
		return 0, fmt.Errorf("unknown buffer %d", bufferID)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token, nil
}

// ReadAllLines implements editor.Buffer.
func (b *FileBuffer) ReadAllLines(ctx context.Context, bufferID int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bufferID != b.id {
		return nil, fmt.Errorf("unknown buffer %d", bufferID)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.lines...), nil
}

// CursorPosition implements editor.Buffer.
func (b *FileBuffer) CursorPosition(ctx context.Context) (editor.Cursor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor, ctx.Err()
}
