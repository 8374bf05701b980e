// Package mcp exposes a headless highlight session as Model Context Protocol
// tools. One in-memory buffer stands in for the editor; every tool reports the
// messages, regions and cursor the editor would have shown.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	dbg "github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/version"
)

type toolHandler = mcp.ToolHandler

// Server is the MCP server and the session state behind its tools.
type Server struct {
	server *mcp.Server
	cfg    *config.Config

	id      string
	started time.Time

	mu     sync.Mutex
	buf    *editor.MemoryBuffer
	out    *editor.Recorder
	cache  *cache.BufferCache
	ctrl   *highlight.Controller
	insp   *highlight.Inspector
	nextID int

	handlers map[string]toolHandler
}

// NewServer creates a server with an empty buffer. A nil cfg uses the
// defaults.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:      cfg,
		id:       uuid.NewString(),
		started:  time.Now(),
		buf:      editor.NewMemoryBuffer(0, ""),
		nextID:   1,
		handlers: make(map[string]toolHandler),
	}
	s.rebuild(cfg.ForcedDialect())

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "tsestree-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()

	dbg.LogMCP("session %s ready", s.id[:8])
	return s, nil
}

// rebuild replaces the cache, controller and inspector, e.g. when a buffer is
// opened with a different dialect. The caller holds s.mu or owns s.
func (s *Server) rebuild(dialect parser.Dialect) {
	if s.ctrl != nil {
		s.ctrl.Close()
	}
	s.out = editor.NewRecorder(s.buf)
	s.cache = cache.New(s.buf, cache.Options{
		Parser:   parser.New(s.cfg.ParserOptions()),
		Registry: s.cfg.Registry(),
		Dialect:  dialect,
	})
	s.ctrl = highlight.NewController(s.cache, s.out, s.cfg.HighlightOptions())
	s.insp = highlight.NewInspector(s.cache, s.out)
}

func (s *Server) addTool(tool *mcp.Tool, h toolHandler) {
	s.handlers[tool.Name] = h
	s.server.AddTool(tool, h)
}

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func (s *Server) registerTools() {
	s.addTool(&mcp.Tool{
		Name:        "open_buffer",
		Description: "Open a file or a text snippet as the current buffer. Replaces the previous buffer and clears its highlight. Returns the new buffer_id.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"path":    {Type: "string", Description: "File to read. Its name selects the dialect unless dialect is given."},
			"text":    {Type: "string", Description: "Buffer content when no path is given"},
			"name":    {Type: "string", Description: "Buffer name used for dialect detection with text"},
			"dialect": {Type: "string", Description: "Force a dialect: typescript, tsx, javascript, go, python, rust, java, cpp, csharp, php, zig"},
		}),
	}, s.handleOpenBuffer)

	s.addTool(&mcp.Tool{
		Name:        "edit_buffer",
		Description: "Replace the text of the current buffer, as if the user edited it. The highlight is not refreshed; call rehighlight.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"buffer_id": {Type: "integer", Description: "Buffer returned by open_buffer"},
			"text":      {Type: "string", Description: "New buffer content"},
		}, "buffer_id", "text"),
	}, s.handleEditBuffer)

	s.addTool(&mcp.Tool{
		Name:        "set_cursor",
		Description: "Move the cursor. Lines are 1-based, columns are 1-based byte columns.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"line":   {Type: "integer", Description: "1-based line"},
			"column": {Type: "integer", Description: "1-based byte column"},
		}, "line", "column"),
	}, s.handleSetCursor)

	s.addTool(&mcp.Tool{
		Name:        "highlight",
		Description: "Highlight every node matching an ESQuery selector and move the cursor to the first match at or after it. An empty selector clears the highlight.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"selector": {Type: "string", Description: "ESQuery selector, e.g. CallExpression[callee.name=\"foo\"]"},
		}),
	}, s.handleHighlight)

	s.addTool(&mcp.Tool{
		Name:        "rehighlight",
		Description: "Re-run the active selector against the current buffer without moving the cursor.",
		InputSchema: object(nil),
	}, s.handleReHighlight)

	s.addTool(&mcp.Tool{
		Name:        "reset",
		Description: "Clear the highlight and the active selector.",
		InputSchema: object(nil),
	}, s.handleReset)

	s.addTool(&mcp.Tool{
		Name:        "focus_next",
		Description: "Move the cursor to the next highlighted match.",
		InputSchema: object(nil),
	}, s.handleFocusNext)

	s.addTool(&mcp.Tool{
		Name:        "focus_prev",
		Description: "Move the cursor to the previous highlighted match.",
		InputSchema: object(nil),
	}, s.handleFocusPrev)

	s.addTool(&mcp.Tool{
		Name:        "inspect",
		Description: "Report the most specific syntax node under the cursor, or with all=true every enclosing node.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"all": {Type: "boolean", Description: "Return the whole ancestry, most specific first"},
		}),
	}, s.handleInspect)

	s.addTool(&mcp.Tool{
		Name:        "suggest_selectors",
		Description: "Suggest selectors that match the nodes under the cursor, most specific first.",
		InputSchema: object(nil),
	}, s.handleSuggestSelectors)

	s.addTool(&mcp.Tool{
		Name:        "query",
		Description: "List the nodes matching a selector with their positions and source text. Does not change the highlight.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"selector": {Type: "string", Description: "ESQuery selector"},
			"limit":    {Type: "integer", Description: "Maximum matches to return (default 100)"},
		}, "selector"),
	}, s.handleQuery)

	s.addTool(&mcp.Tool{
		Name:        "dump_ast",
		Description: "Render the syntax tree of the current buffer.",
		InputSchema: object(map[string]*jsonschema.Schema{
			"format":    {Type: "string", Description: "text, compact, json or yaml (default text)"},
			"max_depth": {Type: "integer", Description: "Maximum depth, 0 for unlimited"},
		}),
	}, s.handleDumpAST)

	s.addTool(&mcp.Tool{
		Name:        "status",
		Description: "Report the session, the active selector and cache statistics.",
		InputSchema: object(nil),
	}, s.handleStatus)
}

// recoverFromPanic turns a panicking tool into an error result.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			dbg.CatastrophicError("panic in %s: %v\n%s", operation, r, debug.Stack())
			dbg.LogMCP("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d", m.Alloc/1024, m.Sys/1024, m.NumGC)
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		dbg.LogMCP("Error in %s: %v", operation, err)
		return createSmartErrorResponse(operation, err, map[string]interface{}{
			"operation": operation,
			"timestamp": time.Now().Format(time.RFC3339),
			"session":   s.id,
		})
	}
	return result, nil
}

// Start serves the tools over stdio until ctx is done or the client goes away.
func (s *Server) Start(ctx context.Context) error {
	dbg.LogMCP("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops pending re-highlights.
func (s *Server) Shutdown(ctx context.Context) error {
	dbg.LogMCP("Shutting down MCP server...")
	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the session.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Close()
	return nil
}

// GetHandlerForTesting returns the handler registered for toolName.
func (s *Server) GetHandlerForTesting(toolName string) mcp.ToolHandler {
	if h, ok := s.handlers[toolName]; ok {
		return h
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
	}
}

// decodeParams unmarshals the tool arguments. Missing arguments leave v
// untouched.
func decodeParams(req *mcp.CallToolRequest, v interface{}) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
