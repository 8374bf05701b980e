package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

type message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type toolResult struct {
	BufferID int             `json:"buffer_id"`
	Messages []message       `json:"messages"`
	Regions  []editor.Region `json:"regions"`
	Cursor   editor.Cursor   `json:"cursor"`
	Result   json.RawMessage `json:"result"`
}

func (r toolResult) texts() []string {
	out := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = m.Text
	}
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func call(t *testing.T, s *Server, tool string, params map[string]interface{}) toolResult {
	t.Helper()
	text, err := s.CallTool(tool, params)
	require.NoError(t, err, text)
	var res toolResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	return res
}

type errorResult struct {
	Error       string   `json:"error"`
	Operation   string   `json:"operation"`
	Suggestions []string `json:"suggestions"`
	Help        string   `json:"help"`
}

func callErr(t *testing.T, s *Server, tool string, params map[string]interface{}) errorResult {
	t.Helper()
	text, err := s.CallTool(tool, params)
	require.Error(t, err)
	var res errorResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, tool, res.Operation)
	return res
}

func openText(t *testing.T, s *Server, text string) int {
	t.Helper()
	res := call(t, s, "open_buffer", map[string]interface{}{"text": text})
	return res.BufferID
}

const navSource = "const a = foo;\nlet b = foo;\nfoo();"

func TestServer_RegistersTools(t *testing.T) {
	s := newTestServer(t)
	tools := s.Tools()
	sort.Strings(tools)
	assert.Equal(t, []string{
		"dump_ast", "edit_buffer", "focus_next", "focus_prev", "highlight",
		"inspect", "open_buffer", "query", "rehighlight", "reset",
		"set_cursor", "status", "suggest_selectors",
	}, tools)

	_, err := s.CallTool("nope", nil)
	assert.EqualError(t, err, "unknown tool: nope")
}

func TestServer_HighlightAndNavigate(t *testing.T) {
	s := newTestServer(t)
	id := openText(t, s, navSource)
	assert.Equal(t, 1, id)

	res := call(t, s, "highlight", map[string]interface{}{"selector": `Identifier[name="foo"]`})
	assert.Equal(t, []editor.Region{
		{StartLine: 1, StartColumn: 11, EndLine: 1, EndColumn: 14},
		{StartLine: 2, StartColumn: 9, EndLine: 2, EndColumn: 12},
		{StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 4},
	}, res.Regions)
	assert.Equal(t, []string{"Found 3 matches", "Match 1/3"}, res.texts())
	assert.Equal(t, editor.Cursor{Line: 1, Column: 11}, res.Cursor)

	res = call(t, s, "focus_next", nil)
	assert.Equal(t, editor.Cursor{Line: 2, Column: 9}, res.Cursor)
	assert.Equal(t, []string{"Match 2/3"}, res.texts())

	call(t, s, "focus_next", nil)
	res = call(t, s, "focus_next", nil)
	assert.Equal(t, editor.Cursor{Line: 3, Column: 1}, res.Cursor)
	assert.Equal(t, []string{"No more matches"}, res.texts())

	res = call(t, s, "focus_prev", nil)
	assert.Equal(t, editor.Cursor{Line: 2, Column: 9}, res.Cursor)

	res = call(t, s, "reset", nil)
	assert.Empty(t, res.Regions)
	assert.Empty(t, res.Messages)
}

func TestServer_HighlightStartsAtCursor(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, navSource)
	call(t, s, "set_cursor", map[string]interface{}{"line": 2, "column": 1})

	res := call(t, s, "highlight", map[string]interface{}{"selector": `Identifier[name="foo"]`})
	assert.Equal(t, editor.Cursor{Line: 2, Column: 9}, res.Cursor)
	assert.Contains(t, res.texts(), "Match 2/3")
}

func TestServer_HighlightMessages(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "highlight", map[string]interface{}{"selector": "Identifier"})
	assert.Equal(t, []message{{Level: "info", Text: "Buffer is empty"}}, res.Messages)

	openText(t, s, "const a = 1;")
	res = call(t, s, "highlight", map[string]interface{}{"selector": "Identifier["})
	assert.Equal(t, []message{{Level: "error", Text: "Invalid selector: Identifier["}}, res.Messages)

	res = call(t, s, "highlight", map[string]interface{}{"selector": "FunctionDeclaration"})
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "warning", res.Messages[0].Level)
	assert.Equal(t, "No matches found for selector: FunctionDeclaration", res.Messages[0].Text)

	openText(t, s, "const = ;")
	res = call(t, s, "highlight", map[string]interface{}{"selector": "Identifier"})
	assert.Equal(t, []message{{Level: "warning", Text: "Failed to parse current buffer"}}, res.Messages)
}

func TestServer_EditAndReHighlight(t *testing.T) {
	s := newTestServer(t)
	id := openText(t, s, "foo;")
	call(t, s, "highlight", map[string]interface{}{"selector": `Identifier[name="foo"]`})

	call(t, s, "edit_buffer", map[string]interface{}{"buffer_id": id, "text": "foo;\nfoo;"})
	res := call(t, s, "rehighlight", nil)
	assert.Len(t, res.Regions, 2)
	assert.Equal(t, []string{"Found 2 matches"}, res.texts())
	// Re-highlighting leaves the cursor alone.
	assert.Equal(t, editor.Cursor{Line: 1, Column: 1}, res.Cursor)

	errRes := callErr(t, s, "edit_buffer", map[string]interface{}{"buffer_id": id + 1, "text": ""})
	assert.Contains(t, errRes.Error, "unknown buffer")
	assert.Contains(t, errRes.Suggestions, "Use the buffer_id returned by the last open_buffer call")
}

func TestServer_InspectAndSuggest(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, "const a = 1;")
	call(t, s, "set_cursor", map[string]interface{}{"line": 1, "column": 7})

	res := call(t, s, "inspect", nil)
	var node NodeInfo
	require.NoError(t, json.Unmarshal(res.Result, &node))
	assert.Equal(t, NodeInfo{Type: "Identifier", Range: [2]int{6, 7}}, node)
	assert.Equal(t, []string{"AST Node: Identifier (6-7)"}, res.texts())

	res = call(t, s, "inspect", map[string]interface{}{"all": true})
	var nodes []NodeInfo
	require.NoError(t, json.Unmarshal(res.Result, &nodes))
	require.NotEmpty(t, nodes)
	assert.Equal(t, "Identifier", nodes[0].Type)
	types := make([]string, len(nodes))
	for i, n := range nodes {
		types[i] = n.Type
	}
	assert.Contains(t, types, "VariableDeclarator")
	assert.Contains(t, types, "Program")

	res = call(t, s, "suggest_selectors", nil)
	var sel struct {
		Selectors []string `json:"selectors"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &sel))
	assert.Equal(t, "Identifier", sel.Selectors[0])
	assert.Contains(t, sel.Selectors, `Identifier[name="a"]`)
}

func TestServer_Query(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, navSource)

	res := call(t, s, "query", map[string]interface{}{"selector": `Identifier[name="foo"]`, "limit": 2})
	var q QueryResult
	require.NoError(t, json.Unmarshal(res.Result, &q))
	assert.Equal(t, 3, q.Total)
	assert.True(t, q.Truncated)
	require.Len(t, q.Matches, 2)
	assert.Equal(t, "foo", q.Matches[0].Text)
	assert.Equal(t, &editor.Region{StartLine: 2, StartColumn: 9, EndLine: 2, EndColumn: 12}, q.Matches[1].Region)
	// query never touches the highlight.
	assert.Empty(t, res.Regions)

	res = call(t, s, "query", map[string]interface{}{"selector": "CallExpression"})
	require.NoError(t, json.Unmarshal(res.Result, &q))
	require.Len(t, q.Matches, 1)
	assert.Equal(t, "foo()", q.Matches[0].Text)

	errRes := callErr(t, s, "query", map[string]interface{}{"selector": "Identifier["})
	assert.NotEmpty(t, errRes.Suggestions)

	errRes = callErr(t, s, "query", map[string]interface{}{})
	assert.Equal(t, "selector is required", errRes.Error)
}

func TestServer_QueryMultiLineText(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, "const o = {\n  a: 1,\n};")

	res := call(t, s, "query", map[string]interface{}{"selector": "ObjectExpression"})
	var q QueryResult
	require.NoError(t, json.Unmarshal(res.Result, &q))
	require.Len(t, q.Matches, 1)
	assert.Equal(t, "{\n  a: 1,\n}", q.Matches[0].Text)
}

func TestServer_DumpAST(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, "const a = 1;")

	res := call(t, s, "dump_ast", map[string]interface{}{"format": "compact"})
	var dump struct {
		Format string `json:"format"`
		Nodes  int    `json:"nodes"`
		Tree   string `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(res.Result, &dump))
	assert.Equal(t, "compact", dump.Format)
	assert.Contains(t, dump.Tree, "Program → VariableDeclaration → VariableDeclarator")
	assert.Equal(t, 5, dump.Nodes)

	res = call(t, s, "dump_ast", map[string]interface{}{"format": "json", "max_depth": 1})
	require.NoError(t, json.Unmarshal(res.Result, &dump))
	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(dump.Tree), &tree))
	assert.Equal(t, "Program", tree["type"])

	errRes := callErr(t, s, "dump_ast", map[string]interface{}{"format": "xml"})
	assert.Equal(t, `unknown format "xml"`, errRes.Error)
}

func TestServer_OpenBufferFromPath(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "app.js")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1;\n"), 0o644))

	res := call(t, s, "open_buffer", map[string]interface{}{"path": path})
	var opened map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Result, &opened))
	assert.Equal(t, "javascript", opened["dialect"])
	assert.EqualValues(t, 1, opened["lines"])

	res = call(t, s, "open_buffer", map[string]interface{}{"path": path, "dialect": "ts"})
	require.NoError(t, json.Unmarshal(res.Result, &opened))
	assert.Equal(t, "typescript", opened["dialect"])
	assert.Equal(t, 2, res.BufferID)

	errRes := callErr(t, s, "open_buffer", map[string]interface{}{"path": filepath.Join(t.TempDir(), "missing.ts")})
	assert.Contains(t, errRes.Suggestions, "Check that the path exists and is readable, or pass the content as text")

	errRes = callErr(t, s, "open_buffer", map[string]interface{}{"path": t.TempDir()})
	assert.Equal(t, []string{"open_buffer only loads source text files"}, errRes.Suggestions)

	errRes = callErr(t, s, "open_buffer", map[string]interface{}{"text": "x", "dialect": "cobol"})
	require.NotEmpty(t, errRes.Suggestions)
	assert.Contains(t, errRes.Suggestions[0], "Supported dialects: typescript, tsx")
}

func TestServer_OpenBufferRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.ts"), []byte("foo();\n"), 0o644))

	cfg := config.Default()
	cfg.Root = root
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	res := call(t, s, "open_buffer", map[string]interface{}{"path": "src/app.ts"})
	var opened map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Result, &opened))
	assert.Equal(t, filepath.Join("src", "app.ts"), opened["name"])
	assert.Equal(t, "typescript", opened["dialect"])

	res = call(t, s, "status", nil)
	var st StatusResult
	require.NoError(t, json.Unmarshal(res.Result, &st))
	assert.Equal(t, filepath.Join(root, "src", "app.ts"), st.Name)
}

func TestServer_OpenBufferClearsHighlight(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, navSource)
	call(t, s, "highlight", map[string]interface{}{"selector": "Identifier"})

	res := call(t, s, "open_buffer", map[string]interface{}{"text": "foo;"})
	assert.Empty(t, res.Regions)
	assert.Equal(t, editor.Cursor{Line: 1, Column: 1}, res.Cursor)

	res = call(t, s, "status", nil)
	var st StatusResult
	require.NoError(t, json.Unmarshal(res.Result, &st))
	assert.Empty(t, st.Highlight.Selector)
	assert.Equal(t, "tsx", st.Dialect)
	assert.Equal(t, 1, st.Lines)
}

func TestServer_SetCursorValidation(t *testing.T) {
	s := newTestServer(t)
	errRes := callErr(t, s, "set_cursor", map[string]interface{}{"line": 0, "column": 1})
	assert.Equal(t, "line and column are 1-based, got 0:1", errRes.Error)
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t)
	openText(t, s, navSource)
	call(t, s, "highlight", map[string]interface{}{"selector": "Identifier"})

	res := call(t, s, "status", nil)
	var st StatusResult
	require.NoError(t, json.Unmarshal(res.Result, &st))
	assert.Equal(t, s.id, st.Session)
	assert.Equal(t, "Identifier", st.Highlight.Selector)
	assert.Equal(t, "idle", st.Highlight.State)
	assert.Len(t, st.Highlight.Regions, 5)
	assert.Equal(t, 3, st.Lines)
	assert.GreaterOrEqual(t, st.Cache.Parses, int64(1))
}

func TestHandler_NilArguments(t *testing.T) {
	s := newTestServer(t)
	h := s.GetHandlerForTesting("status")
	result, err := h(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: "status"}})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.GetHandlerForTesting("missing")(context.Background(), &mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_Shutdown(t *testing.T) {
	s, err := NewServer(nil)
	require.NoError(t, err)
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_ClientSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, len(s.Tools()))

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "open_buffer",
		Arguments: map[string]any{"text": navSource},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var res toolResult
	require.NoError(t, json.Unmarshal([]byte(text.Text), &res))
	assert.Equal(t, 1, res.BufferID)

	require.NoError(t, cs.Close())
	require.NoError(t, ss.Wait())
}

func TestRecoverFromPanic(t *testing.T) {
	s := newTestServer(t)
	result, err := s.recoverFromPanic("highlight", func() (*mcp.CallToolResult, error) {
		panic("boom")
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	var res errorResult
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &res))
	assert.Equal(t, "internal error: boom", res.Error)
	assert.Equal(t, "highlight", res.Operation)
}
