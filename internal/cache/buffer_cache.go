// Package cache holds the most recent buffer snapshot and its syntax tree.
//
// A snapshot is keyed by buffer id and change token. Reading the same key
// twice never touches the editor again, and the tree for a snapshot is parsed
// at most once no matter how many callers ask for it concurrently.
package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/textpos"
)

// Entry is one buffer snapshot. The text never changes; the tree is filled in
// lazily by BufferCache.AST.
type Entry struct {
	BufferID int
	Token    int64
	Name     string
	Dialect  parser.Dialect
	Doc      *textpos.Document
	CachedAt time.Time

	mu     sync.Mutex
	parsed bool
	ast    *estree.Node
	err    error
}

// Key identifies the snapshot as "bufferID:token".
func (e *Entry) Key() string {
	return strconv.Itoa(e.BufferID) + ":" + strconv.FormatInt(e.Token, 10)
}

// Text returns the joined buffer text.
func (e *Entry) Text() string {
	return e.Doc.Text
}

// Empty reports whether the buffer holds nothing but whitespace.
func (e *Entry) Empty() bool {
	return e.Doc.Empty()
}

// Parsed returns the memoized parse result, if any.
func (e *Entry) Parsed() (*estree.Node, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ast, e.parsed, e.err
}

func (e *Entry) store(ast *estree.Node, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ast, e.err, e.parsed = ast, err, true
}

// Named is implemented by buffers that know the path they were loaded from.
// The name selects the parser dialect.
type Named interface {
	Name() string
}

// Options configure a BufferCache.
type Options struct {
	Parser   *parser.Parser
	Registry *parser.Registry
	// Dialect forces a dialect for every buffer when set.
	Dialect parser.Dialect
}

// BufferCache is a single-slot cache in front of an editor.Buffer.
type BufferCache struct {
	buf      editor.Buffer
	parser   *parser.Parser
	registry *parser.Registry
	dialect  parser.Dialect

	mu    sync.Mutex
	entry *Entry
	group singleflight.Group

	// Atomic counters
	hits   int64
	misses int64
	parses int64

	createdAt time.Time
}

// New creates a cache reading from buf.
func New(buf editor.Buffer, opts Options) *BufferCache {
	if opts.Parser == nil {
		opts.Parser = parser.New(parser.Options{})
	}
	if opts.Registry == nil {
		opts.Registry = parser.NewRegistry()
	}
	return &BufferCache{
		buf:       buf,
		parser:    opts.Parser,
		registry:  opts.Registry,
		dialect:   opts.Dialect,
		createdAt: time.Now(),
	}
}

// Buffer returns the underlying editor buffer.
func (c *BufferCache) Buffer() editor.Buffer {
	return c.buf
}

// State returns the snapshot for bufferID at token, reading the buffer only
// when the cached entry belongs to another key.
func (c *BufferCache) State(ctx context.Context, bufferID int, token int64) (*Entry, error) {
	c.mu.Lock()
	e := c.entry
	c.mu.Unlock()
	if e != nil && e.BufferID == bufferID && e.Token == token {
		atomic.AddInt64(&c.hits, 1)
		return e, nil
	}

	key := strconv.Itoa(bufferID) + ":" + strconv.FormatInt(token, 10)
	v, err, _ := c.group.Do("lines:"+key, func() (interface{}, error) {
		c.mu.Lock()
		cur := c.entry
		c.mu.Unlock()
		if cur != nil && cur.BufferID == bufferID && cur.Token == token {
			return cur, nil
		}

		atomic.AddInt64(&c.misses, 1)
		lines, err := c.buf.ReadAllLines(ctx, bufferID)
		if err != nil {
			return nil, fmt.Errorf("failed to read buffer %d: %w", bufferID, err)
		}
		doc := textpos.NewDocument(lines)
		entry := &Entry{
			BufferID: bufferID,
			Token:    token,
			Doc:      doc,
			CachedAt: time.Now(),
		}
		if named, ok := c.buf.(Named); ok {
			entry.Name = named.Name()
		}
		entry.Dialect = c.dialectFor(entry)

		c.mu.Lock()
		c.entry = entry
		c.mu.Unlock()
		debug.LogCache("stored buffer %s (%d lines, %s)", key, doc.LineCount(), entry.Dialect)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (c *BufferCache) dialectFor(e *Entry) parser.Dialect {
	if c.dialect != "" {
		return c.dialect
	}
	if e.Name == "" {
		return parser.DefaultDialect
	}
	return c.registry.ForPath(e.Name, e.Doc.Text)
}

// AST returns the syntax tree for the snapshot at bufferID and token. A
// whitespace-only buffer yields errors.ErrEmptyBuffer; syntax errors yield a
// *errors.ParseError. Both outcomes are memoized for the snapshot.
func (c *BufferCache) AST(ctx context.Context, bufferID int, token int64) (*estree.Node, *Entry, error) {
	e, err := c.State(ctx, bufferID, token)
	if err != nil {
		return nil, nil, err
	}
	if e.Empty() {
		return nil, e, errors.ErrEmptyBuffer
	}
	if ast, ok, err := e.Parsed(); ok {
		return ast, e, err
	}

	v, err, _ := c.group.Do("ast:"+e.Key(), func() (interface{}, error) {
		if ast, ok, err := e.Parsed(); ok {
			return ast, err
		}
		atomic.AddInt64(&c.parses, 1)
		ast, err := c.parser.Parse(ctx, e.Text(), e.Dialect)
		var pe *errors.ParseError
		if stderrors.As(err, &pe) {
			pe.WithBuffer(bufferID)
		}
		if ctx.Err() == nil {
			e.store(ast, err)
		}
		return ast, err
	})
	if err != nil {
		return nil, e, err
	}
	return v.(*estree.Node), e, nil
}

// Current resolves the current buffer and its change token, then returns its
// snapshot and tree.
func (c *BufferCache) Current(ctx context.Context) (*estree.Node, *Entry, error) {
	id, token, err := c.currentKey(ctx)
	if err != nil {
		return nil, nil, err
	}
	return c.AST(ctx, id, token)
}

// CurrentState is Current without parsing.
func (c *BufferCache) CurrentState(ctx context.Context) (*Entry, error) {
	id, token, err := c.currentKey(ctx)
	if err != nil {
		return nil, err
	}
	return c.State(ctx, id, token)
}

func (c *BufferCache) currentKey(ctx context.Context) (int, int64, error) {
	id, err := c.buf.CurrentBufferID(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve current buffer: %w", err)
	}
	token, err := c.buf.ChangeToken(ctx, id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read change token of buffer %d: %w", id, err)
	}
	return id, token, nil
}

// Invalidate drops the cached entry.
func (c *BufferCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// Stats returns cache statistics
func (c *BufferCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	stats := CacheStats{
		Hits:    hits,
		Misses:  misses,
		Parses:  atomic.LoadInt64(&c.parses),
		HitRate: hitRate,
		Status:  getHealthStatus(hitRate),
		Uptime:  time.Since(c.createdAt),
	}
	c.mu.Lock()
	if e := c.entry; e != nil {
		stats.Key = e.Key()
		stats.Dialect = string(e.Dialect)
		stats.Lines = e.Doc.LineCount()
	}
	c.mu.Unlock()
	return stats
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	Parses  int64         `json:"parses"`
	HitRate float64       `json:"hit_rate"`
	Status  string        `json:"status"`
	Key     string        `json:"key,omitempty"`
	Dialect string        `json:"dialect,omitempty"`
	Lines   int           `json:"lines,omitempty"`
	Uptime  time.Duration `json:"uptime"`
}

func getHealthStatus(hitRate float64) string {
	switch {
	case hitRate >= 0.95:
		return "excellent"
	case hitRate >= 0.85:
		return "good"
	case hitRate >= 0.70:
		return "fair"
	default:
		return "poor"
	}
}
