package highlight

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/query"
)

// Inspector reports the syntax nodes under the cursor.
type Inspector struct {
	cache *cache.BufferCache
	buf   editor.Buffer
	out   editor.Renderer
}

// NewInspector creates an inspector.
func NewInspector(c *cache.BufferCache, out editor.Renderer) *Inspector {
	return &Inspector{cache: c, buf: c.Buffer(), out: out}
}

// Ancestry returns every node enclosing the cursor, most specific first. A
// nil slice with a nil error means a message has already been shown.
func (in *Inspector) Ancestry(ctx context.Context) ([]*estree.Node, error) {
	ast, entry, err := in.cache.Current(ctx)
	switch {
	case stderrors.Is(err, errors.ErrEmptyBuffer):
		return nil, in.out.ShowMessage(ctx, editor.Info("Buffer is empty"))
	case errors.IsParse(err):
		debug.LogHighlight("inspect: %v", err)
		return nil, in.out.ShowMessage(ctx, editor.Warning("Failed to parse current buffer"))
	case err != nil:
		return nil, err
	}

	cur, err := in.buf.CursorPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cursor: %w", err)
	}
	offset, err := entry.Doc.Offset(cur.Line, cur.Column)
	if err != nil {
		return nil, stderrors.Join(err, in.out.ShowMessage(ctx, editor.Error("Failed to inspect AST")))
	}

	nodes := estree.FindNodesAtPosition(ast, offset)
	if len(nodes) == 0 {
		return nil, in.out.ShowMessage(ctx, editor.Info("No AST nodes found at cursor position"))
	}
	return nodes, nil
}

// Inspect shows and returns the most specific node under the cursor.
func (in *Inspector) Inspect(ctx context.Context) (*estree.Node, error) {
	nodes, err := in.Ancestry(ctx)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	n := nodes[0]
	msg := editor.Info("AST Node: %s (%d-%d)", n.Type, n.Range.Start, n.Range.End)
	return n, in.out.ShowMessage(ctx, msg)
}

// Suggest returns candidate selectors for the nodes under the cursor, the
// most specific node's first. The list never holds duplicates.
func (in *Inspector) Suggest(ctx context.Context) ([]string, error) {
	nodes, err := in.Ancestry(ctx)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, n := range nodes {
		for _, s := range query.Suggest(n) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out, nil
}
