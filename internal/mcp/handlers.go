package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/display"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/query"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/textpos"
	"github.com/ediezindell/denops-typescript-estree.vim/pkg/pathutil"
)

// DefaultQueryLimit caps the matches returned by the query tool.
const DefaultQueryLimit = 100

// OpenBufferParams are the arguments of open_buffer.
type OpenBufferParams struct {
	Path    string `json:"path,omitempty"`
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"`
	Dialect string `json:"dialect,omitempty"`
}

// EditBufferParams are the arguments of edit_buffer.
type EditBufferParams struct {
	BufferID int    `json:"buffer_id"`
	Text     string `json:"text"`
}

// SetCursorParams are the arguments of set_cursor.
type SetCursorParams struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// HighlightParams are the arguments of highlight.
type HighlightParams struct {
	Selector string `json:"selector"`
}

// InspectParams are the arguments of inspect.
type InspectParams struct {
	All bool `json:"all,omitempty"`
}

// QueryParams are the arguments of query.
type QueryParams struct {
	Selector string `json:"selector"`
	Limit    int    `json:"limit,omitempty"`
}

// DumpASTParams are the arguments of dump_ast.
type DumpASTParams struct {
	Format   string `json:"format,omitempty"`
	MaxDepth *int   `json:"max_depth,omitempty"`
}

// ToolResponse is what every tool returns: the side effects an editor would
// have shown plus a tool-specific result.
type ToolResponse struct {
	BufferID int              `json:"buffer_id"`
	Messages []editor.Message `json:"messages"`
	Regions  []editor.Region  `json:"regions"`
	Cursor   editor.Cursor    `json:"cursor"`
	Result   interface{}      `json:"result,omitempty"`
}

// NodeInfo summarizes one syntax node.
type NodeInfo struct {
	Type   string         `json:"type"`
	Range  [2]int         `json:"range"`
	Region *editor.Region `json:"region,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// QueryResult is the result of query.
type QueryResult struct {
	Selector  string     `json:"selector"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated,omitempty"`
	Matches   []NodeInfo `json:"matches"`
}

// StatusResult is the result of status.
type StatusResult struct {
	Session   string           `json:"session"`
	Uptime    string           `json:"uptime"`
	Name      string           `json:"name,omitempty"`
	Dialect   string           `json:"dialect,omitempty"`
	Lines     int              `json:"lines"`
	Highlight highlight.Status `json:"highlight"`
	Cache     cache.CacheStats `json:"cache"`
}

// run executes fn against the session and wraps its outcome in a
// ToolResponse.
func (s *Server) run(ctx context.Context, operation string, fn func(ctx context.Context) (interface{}, error)) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(operation, func() (*mcp.CallToolResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		result, err := fn(ctx)
		if err != nil {
			s.out.Drain()
			return nil, err
		}
		resp, err := s.snapshot(ctx, result)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) snapshot(ctx context.Context, result interface{}) (*ToolResponse, error) {
	msgs, _ := s.out.Drain()
	id, err := s.buf.CurrentBufferID(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := s.buf.CursorPosition(ctx)
	if err != nil {
		return nil, err
	}
	regions := s.ctrl.Status().Regions
	if msgs == nil {
		msgs = []editor.Message{}
	}
	if regions == nil {
		regions = []editor.Region{}
	}
	return &ToolResponse{
		BufferID: id,
		Messages: msgs,
		Regions:  regions,
		Cursor:   cur,
		Result:   result,
	}, nil
}

func (s *Server) handleOpenBuffer(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params OpenBufferParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("open_buffer", err)
	}
	return s.run(ctx, "open_buffer", func(ctx context.Context) (interface{}, error) {
		dialect := s.cfg.ForcedDialect()
		if params.Dialect != "" {
			d, err := parser.ParseDialect(params.Dialect)
			if err != nil {
				return nil, err
			}
			dialect = d
		}

		name, text := params.Name, params.Text
		if params.Path != "" {
			abs, err := pathutil.Resolve(params.Path, s.cfg.Root)
			if err != nil {
				return nil, errors.NewFileError("resolve", params.Path, err)
			}
			content, err := s.cfg.FileValidator().ReadFile(abs)
			if err != nil {
				return nil, err
			}
			name, text = abs, string(content)
		}

		// Drop the old highlight before the buffer changes under it.
		if err := s.ctrl.Reset(ctx); err != nil {
			return nil, err
		}
		id := s.nextID
		s.nextID++
		s.buf.Replace(id, name, text)
		s.rebuild(dialect)

		entry, err := s.cache.CurrentState(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"name":    pathutil.ToRelative(name, s.cfg.Root),
			"dialect": entry.Dialect.String(),
			"lines":   entry.Doc.LineCount(),
		}, nil
	})
}

func (s *Server) handleEditBuffer(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params EditBufferParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("edit_buffer", err)
	}
	return s.run(ctx, "edit_buffer", func(ctx context.Context) (interface{}, error) {
		id, err := s.buf.CurrentBufferID(ctx)
		if err != nil {
			return nil, err
		}
		if params.BufferID != id {
			return nil, fmt.Errorf("unknown buffer %d (current buffer is %d)", params.BufferID, id)
		}
		s.buf.SetText(params.Text)
		token, err := s.buf.ChangeToken(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"change_token": token}, nil
	})
}

func (s *Server) handleSetCursor(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SetCursorParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("set_cursor", err)
	}
	if params.Line < 1 || params.Column < 1 {
		return createErrorResponse("set_cursor", fmt.Errorf("line and column are 1-based, got %d:%d", params.Line, params.Column))
	}
	return s.run(ctx, "set_cursor", func(ctx context.Context) (interface{}, error) {
		s.buf.SetCursor(params.Line, params.Column)
		return nil, nil
	})
}

func (s *Server) handleHighlight(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params HighlightParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("highlight", err)
	}
	return s.run(ctx, "highlight", func(ctx context.Context) (interface{}, error) {
		return nil, s.ctrl.Highlight(ctx, strings.TrimSpace(params.Selector))
	})
}

func (s *Server) handleReHighlight(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "rehighlight", func(ctx context.Context) (interface{}, error) {
		return nil, s.ctrl.ReHighlightNow(ctx)
	})
}

func (s *Server) handleReset(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "reset", func(ctx context.Context) (interface{}, error) {
		return nil, s.ctrl.Reset(ctx)
	})
}

func (s *Server) handleFocusNext(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "focus_next", func(ctx context.Context) (interface{}, error) {
		return nil, s.ctrl.FocusNext(ctx)
	})
}

func (s *Server) handleFocusPrev(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "focus_prev", func(ctx context.Context) (interface{}, error) {
		return nil, s.ctrl.FocusPrev(ctx)
	})
}

func (s *Server) handleInspect(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InspectParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("inspect", err)
	}
	return s.run(ctx, "inspect", func(ctx context.Context) (interface{}, error) {
		if !params.All {
			n, err := s.insp.Inspect(ctx)
			if err != nil || n == nil {
				return nil, err
			}
			return nodeInfo(n, nil), nil
		}
		nodes, err := s.insp.Ancestry(ctx)
		if err != nil || len(nodes) == 0 {
			return nil, err
		}
		out := make([]NodeInfo, len(nodes))
		for i, n := range nodes {
			out[i] = nodeInfo(n, nil)
		}
		return out, nil
	})
}

func (s *Server) handleSuggestSelectors(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "suggest_selectors", func(ctx context.Context) (interface{}, error) {
		sels, err := s.insp.Suggest(ctx)
		if err != nil {
			return nil, err
		}
		if sels == nil {
			return nil, nil
		}
		return map[string]interface{}{"selectors": sels}, nil
	})
}

func (s *Server) handleQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params QueryParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("query", err)
	}
	if strings.TrimSpace(params.Selector) == "" {
		return createErrorResponse("query", fmt.Errorf("selector is required"))
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return s.run(ctx, "query", func(ctx context.Context) (interface{}, error) {
		ast, entry, err := s.current(ctx)
		if err != nil || ast == nil {
			return nil, err
		}
		sel, err := query.Compile(params.Selector)
		if err != nil {
			return nil, err
		}
		nodes, err := sel.Match(ast)
		if err != nil {
			return nil, err
		}

		res := QueryResult{Selector: sel.String(), Total: len(nodes), Matches: []NodeInfo{}}
		if len(nodes) > limit {
			nodes = nodes[:limit]
			res.Truncated = true
		}
		for _, n := range nodes {
			res.Matches = append(res.Matches, nodeInfo(n, entry.Doc))
		}
		return res, nil
	})
}

func (s *Server) handleDumpAST(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params DumpASTParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("dump_ast", err)
	}
	format := params.Format
	if format == "" {
		format = "text"
	}
	switch format {
	case "text", "compact", "json", "yaml":
	default:
		return createErrorResponse("dump_ast", fmt.Errorf("unknown format %q", format))
	}
	depth := s.cfg.Display.MaxDepth
	if params.MaxDepth != nil {
		depth = *params.MaxDepth
	}
	return s.run(ctx, "dump_ast", func(ctx context.Context) (interface{}, error) {
		ast, _, err := s.current(ctx)
		if err != nil || ast == nil {
			return nil, err
		}
		tf := display.NewTreeFormatter(display.FormatterOptions{
			Format:   format,
			ShowLoc:  true,
			MaxDepth: depth,
		})
		tree, err := tf.Format(ast)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"format": format,
			"nodes":  estree.Count(ast),
			"tree":   tree,
		}, nil
	})
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, "status", func(ctx context.Context) (interface{}, error) {
		entry, err := s.cache.CurrentState(ctx)
		if err != nil {
			return nil, err
		}
		return StatusResult{
			Session:   s.id,
			Uptime:    time.Since(s.started).Round(time.Millisecond).String(),
			Name:      entry.Name,
			Dialect:   entry.Dialect.String(),
			Lines:     entry.Doc.LineCount(),
			Highlight: s.ctrl.Status(),
			Cache:     s.cache.Stats(),
		}, nil
	})
}

// current returns the tree of the current buffer. Empty and unparsable
// buffers are reported as messages with a nil tree, the way the controller
// reports them.
func (s *Server) current(ctx context.Context) (*estree.Node, *cache.Entry, error) {
	ast, entry, err := s.cache.Current(ctx)
	switch {
	case stderrors.Is(err, errors.ErrEmptyBuffer):
		return nil, nil, s.out.ShowMessage(ctx, editor.Info("Buffer is empty"))
	case errors.IsParse(err):
		if msgErr := s.out.ShowMessage(ctx, editor.Warning("Failed to parse current buffer")); msgErr != nil {
			return nil, nil, msgErr
		}
		return nil, nil, err
	case err != nil:
		return nil, nil, err
	}
	return ast, entry, nil
}

func nodeInfo(n *estree.Node, doc *textpos.Document) NodeInfo {
	info := NodeInfo{Type: string(n.Type)}
	if n.Range != nil {
		info.Range = [2]int{n.Range.Start, n.Range.End}
	}
	if doc != nil && n.Loc != nil {
		r := doc.Region(n.Loc)
		info.Region = &r
		info.Text = doc.RegionText(r)
	}
	return info
}
