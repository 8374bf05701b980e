package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/version"
)

// syncBuffer is a bytes.Buffer safe for a command writing from another
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(ctx context.Context, args ...string) (string, string, error) {
	var stdout, stderr syncBuffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.RunContext(ctx, append([]string{"tsestree", "--color", "never"}, args...))
	return stdout.String(), stderr.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, _, err := runCLI(context.Background(), args...)
	require.NoError(t, err)
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const source = "const a = foo;\nlet b = foo;\nfoo();\n"

func TestQuery_Text(t *testing.T) {
	path := writeFile(t, "nav.ts", source)
	out := run(t, "query", path, `Identifier[name="foo"]`)

	assert.Contains(t, out, path+"\n")
	assert.Contains(t, out, "1 │ const a = foo;\n  │           ^^^\n")
	assert.Contains(t, out, "3 │ foo();\n  │ ^^^\n")
	assert.True(t, strings.HasSuffix(out, "info: Found 3 matches\n"), out)
}

func TestQuery_NoMatches(t *testing.T) {
	path := writeFile(t, "nav.ts", source)
	out := run(t, "query", path, "ClassDeclaration")
	assert.Equal(t, "warning: No matches found for selector: ClassDeclaration\n", out)
}

func TestQuery_JSON(t *testing.T) {
	path := writeFile(t, "nav.ts", source)
	out := run(t, "query", "--json", path, "CallExpression")

	var nodes []nodeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "CallExpression", nodes[0].Type)
	assert.Equal(t, "foo()", nodes[0].Text)
	assert.Equal(t, &editor.Region{StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 6}, nodes[0].Region)
}

func TestQuery_InvalidSelector(t *testing.T) {
	path := writeFile(t, "nav.ts", source)
	_, _, err := runCLI(context.Background(), "query", path, "Identifier[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Identifier[")
}

func TestQuery_MissingArgs(t *testing.T) {
	_, _, err := runCLI(context.Background(), "query", "x.ts")
	assert.EqualError(t, err, "query requires FILE SELECTOR")
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "a.ts", "const a = 1;\n")

	out := run(t, "inspect", "--line", "1", "--col", "7", path)
	assert.Equal(t, "info: AST Node: Identifier (6-7)\n", out)

	out = run(t, "inspect", "--line", "1", "--col", "7", "--all", path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "Identifier [6-7] 1:7-1:8", lines[0])
	assert.Contains(t, out, "Program [0-12]")
}

func TestInspect_JSON(t *testing.T) {
	path := writeFile(t, "a.ts", "const a = 1;\n")
	out := run(t, "inspect", "--json", "--line", "1", "--col", "11", path)

	var nodes []nodeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "Literal", nodes[0].Type)
	assert.Equal(t, "1", nodes[0].Text)

	empty := writeFile(t, "empty.ts", "  \n")
	_, _, err := runCLI(context.Background(), "inspect", "--json", empty)
	assert.EqualError(t, err, "Buffer is empty")
}

func TestSelectors(t *testing.T) {
	path := writeFile(t, "a.ts", "const a = 1;\n")
	out := run(t, "selectors", "--line", "1", "--col", "7", path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Identifier", lines[0])
	assert.Contains(t, lines, `Identifier[name="a"]`)
}

func TestAST(t *testing.T) {
	path := writeFile(t, "a.ts", "const a = 1;\n")

	out := run(t, "ast", path)
	assert.Contains(t, out, "AST: 5 nodes")
	assert.Contains(t, out, `id: Identifier [6-7] name="a"`)

	out = run(t, "ast", "--format", "compact", path)
	assert.Contains(t, out, "Program → VariableDeclaration → VariableDeclarator")

	out = run(t, "ast", "--format", "yaml", "--max-depth", "1", path)
	assert.Contains(t, out, "type: Program")
	assert.NotContains(t, out, "Identifier")

	_, _, err := runCLI(context.Background(), "ast", "--format", "xml", path)
	assert.EqualError(t, err, `unknown format "xml" (want text, compact, json or yaml)`)
}

func TestAST_ParseError(t *testing.T) {
	path := writeFile(t, "bad.ts", "const = ;\n")
	_, _, err := runCLI(context.Background(), "ast", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")

	// --allow-errors keeps the partial tree.
	out := run(t, "--allow-errors", "ast", "--format", "compact", path)
	assert.Contains(t, out, "Program")
}

func TestGlobalFlags(t *testing.T) {
	path := writeFile(t, "a.ts", "const a = 1;\n")

	_, _, err := runCLI(context.Background(), "--dialect", "cobol", "ast", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialect")

	_, _, err = runCLI(context.Background(), "--color", "sometimes", "ast", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")

	_, _, err = runCLI(context.Background(), "ast", filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.ts")
}

func TestRefusesBinaryFiles(t *testing.T) {
	path := writeFile(t, "logo.ts", "\x89PNG\r\n\x1a\nIHDR")
	_, _, err := runCLI(context.Background(), "ast", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.kdl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("display {\n    max-depth 1\n}\n"), 0o644))
	path := writeFile(t, "a.ts", "const a = 1;\n")

	out := run(t, "--config", cfgPath, "ast", "--format", "yaml", path)
	assert.NotContains(t, out, "Identifier")
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "w.ts", "foo;\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	done := make(chan error, 1)
	go func() {
		done <- app.RunContext(ctx, []string{"tsestree", "--color", "never", "watch", path, `Identifier[name="foo"]`})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, stdout.String(), "info: Found 1 matches")

	require.NoError(t, os.WriteFile(path, []byte("foo;\nfoo;\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "info: Found 2 matches")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestVersion(t *testing.T) {
	out := run(t, "--version")
	assert.True(t, strings.HasPrefix(out, "tsestree version "+version.Version+" (commit "), out)
}

func TestBuildID(t *testing.T) {
	assert.Equal(t, version.BuildID()+"\n", run(t, "build-id"))
}

func TestDebugLogFile(t *testing.T) {
	enabled := debug.EnableDebug
	t.Cleanup(func() { debug.EnableDebug = enabled })

	path := writeFile(t, "a.ts", "const a = 1;\n")
	_, stderr, err := runCLI(context.Background(), "--debug-log", "ast", path)
	require.NoError(t, err)

	first, _, _ := strings.Cut(stderr, "\n")
	logPath, ok := strings.CutPrefix(first, "Debug log: ")
	require.True(t, ok, stderr)
	t.Cleanup(func() { os.Remove(logPath) })
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "CACHE")
}
