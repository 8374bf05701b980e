// Package parser turns source text into the ESTree-shaped node tree used by
// the selector engine. JavaScript and TypeScript grammars are converted into
// ESTree / typescript-estree node types; other tree-sitter grammars are
// exposed generically.
package parser

import (
	"context"
	"fmt"
	"sync"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/textpos"
)

// Options control parsing.
type Options struct {
	// AllowErrors returns the partial tree when the source has syntax errors
	// instead of failing. ERROR nodes are dropped from the result.
	AllowErrors bool
}

// Parser converts source text into an estree tree. It is safe for
// concurrent use; tree-sitter parsers are pooled per dialect.
type Parser struct {
	opts  Options
	mu    sync.Mutex
	pools map[Dialect]*sync.Pool
}

// New creates a parser.
func New(opts Options) *Parser {
	return &Parser{opts: opts, pools: make(map[Dialect]*sync.Pool)}
}

// Options returns the parser's options.
func (p *Parser) Options() Options {
	return p.opts
}

func (p *Parser) pool(d Dialect) (*sync.Pool, error) {
	lang, err := language(d)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pool, ok := p.pools[d]
	if !ok {
		pool = &sync.Pool{New: func() any {
			tsp := tree_sitter.NewParser()
			if err := tsp.SetLanguage(lang); err != nil {
				debug.LogParse("cannot load %s grammar: %v", d, err)
				return nil
			}
			return tsp
		}}
		p.pools[d] = pool
	}
	return pool, nil
}

// Parse parses source with the given dialect. On a syntax error it returns a
// *errors.ParseError locating the first ERROR or MISSING node, unless
// AllowErrors is set.
func (p *Parser) Parse(ctx context.Context, source string, dialect Dialect) (root *estree.Node, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dialect == "" {
		dialect = DefaultDialect
	}
	pool, err := p.pool(dialect)
	if err != nil {
		return nil, errors.NewParseError(string(dialect), 0, 0, "", err)
	}
	tsp, _ := pool.Get().(*tree_sitter.Parser)
	if tsp == nil {
		return nil, errors.NewParseError(string(dialect), 0, 0, "", fmt.Errorf("grammar unavailable"))
	}
	defer pool.Put(tsp)

	defer func() {
		if r := recover(); r != nil {
			debug.CatastrophicError("tree-sitter panic (%s): %v", dialect, r)
			root = nil
			err = errors.NewParseError(string(dialect), 0, 0, "", fmt.Errorf("parser panic: %v", r))
		}
	}()

	start := time.Now()
	// The C library reads the buffer while the tree is alive, so it gets its
	// own copy.
	buf := []byte(source)
	tree := tsp.Parse(buf, nil)
	if tree == nil {
		return nil, errors.NewParseError(string(dialect), 0, 0, "", fmt.Errorf("parser returned no tree"))
	}
	defer tree.Close()

	units := textpos.NewUnitTable(source)
	cst := tree.RootNode()
	if cst.HasError() && !p.opts.AllowErrors {
		return nil, firstError(cst, buf, units, dialect)
	}

	c := &converter{src: buf, units: units, dialect: dialect}
	if dialect.ESTree() {
		root = c.program(cst)
	} else {
		root = c.generic(cst)
		full := estree.Range{Start: 0, End: units.Len()}
		root.Range = &full
		root.Loc = &estree.SourceLocation{Start: estree.Position{Line: 1}, End: units.Position(len(buf))}
	}
	debug.LogParse("parsed %d bytes as %s in %v (%d nodes)", len(buf), dialect, time.Since(start), estree.Count(root))
	return root, nil
}

// firstError finds the earliest ERROR or MISSING node in document order.
func firstError(root *tree_sitter.Node, src []byte, units *textpos.UnitTable, dialect Dialect) error {
	var found *tree_sitter.Node
	var visit func(n *tree_sitter.Node) bool
	visit = func(n *tree_sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			found = n
			return true
		}
		if !n.HasError() {
			return false
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if visit(n.Child(i)) {
				return true
			}
		}
		return false
	}
	visit(root)

	if found == nil {
		return errors.NewParseError(string(dialect), 0, 0, "", fmt.Errorf("syntax error"))
	}
	pos := units.Position(int(found.StartByte()))
	var token string
	var cause error
	if found.IsMissing() {
		token = found.Kind()
		cause = fmt.Errorf("missing %s", found.Kind())
	} else {
		token = found.Utf8Text(src)
		if len(token) > 20 {
			token = token[:20]
		}
		cause = fmt.Errorf("unexpected token")
	}
	return errors.NewParseError(string(dialect), pos.Line, pos.Column+1, token, cause)
}

var defaultParser = New(Options{})

// Parse parses source with a shared strict parser.
func Parse(ctx context.Context, source string, dialect Dialect) (*estree.Node, error) {
	return defaultParser.Parse(ctx, source, dialect)
}
