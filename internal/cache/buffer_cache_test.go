package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestState_HitDoesNotRead(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "const a = 1;\nconst b = 2;")
	c := New(buf, Options{})
	ctx := context.Background()

	e1, err := c.State(ctx, 1, 1)
	require.NoError(t, err)
	e2, err := c.State(ctx, 1, 1)
	require.NoError(t, err)

	assert.Same(t, e1, e2)
	assert.Equal(t, 1, buf.Reads())
	assert.Equal(t, "1:1", e1.Key())
	assert.Equal(t, []int{0, 13}, e1.Doc.LineStarts)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestState_NewTokenRefetches(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "a;")
	c := New(buf, Options{})
	ctx := context.Background()

	_, err := c.State(ctx, 1, 1)
	require.NoError(t, err)
	buf.SetText("b;")
	e, err := c.State(ctx, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "b;", e.Text())
	assert.Equal(t, 2, buf.Reads())
}

func TestAST_TextThenTreeReadsOnce(t *testing.T) {
	buf := editor.NewMemoryBuffer(3, "let x = 1;")
	c := New(buf, Options{})
	ctx := context.Background()

	_, err := c.State(ctx, 3, 1)
	require.NoError(t, err)
	ast, e, err := c.AST(ctx, 3, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, buf.Reads())
	assert.Equal(t, estree.Program, ast.Type)
	assert.Equal(t, parser.DefaultDialect, e.Dialect)

	again, _, err := c.AST(ctx, 3, 1)
	require.NoError(t, err)
	assert.Same(t, ast, again)
	assert.Equal(t, int64(1), c.Stats().Parses)
}

func TestAST_ConcurrentCallersShareOneParse(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "function f() { return [1, 2, 3].map(x => x * 2); }")
	c := New(buf, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*estree.Node, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ast, _, err := c.Current(ctx)
			assert.NoError(t, err)
			results[i] = ast
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, buf.Reads())
	assert.Equal(t, int64(1), c.Stats().Parses)
}

func TestAST_NeverServesAnotherToken(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "a;")
	c := New(buf, Options{})
	ctx := context.Background()

	first, _, err := c.Current(ctx)
	require.NoError(t, err)
	buf.SetText("a; b;")
	second, e, err := c.Current(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), e.Token)
	assert.Equal(t, 2, estree.Types(second)[estree.ExpressionStatement])
}

func TestAST_EmptyBuffer(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "  \n\t\n")
	c := New(buf, Options{})

	ast, e, err := c.Current(context.Background())
	assert.Nil(t, ast)
	require.NotNil(t, e)
	assert.True(t, e.Empty())
	assert.ErrorIs(t, err, errors.ErrEmptyBuffer)
	assert.Equal(t, int64(0), c.Stats().Parses)
}

func TestAST_ParseFailureIsMemoized(t *testing.T) {
	buf := editor.NewMemoryBuffer(7, "const = ;")
	c := New(buf, Options{})
	ctx := context.Background()

	_, _, err := c.Current(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))

	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.BufferID)

	_, _, err = c.Current(ctx)
	assert.True(t, errors.IsParse(err))
	assert.Equal(t, int64(1), c.Stats().Parses)
}

func TestAST_DialectFromBufferName(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "")
	buf.Replace(2, "main.go", "package main\n\nfunc main() {}\n")
	c := New(buf, Options{})

	ast, e, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, parser.DialectGo, e.Dialect)
	assert.Equal(t, estree.Type("SourceFile"), ast.Type)
}

func TestAST_DialectFromShebang(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "")
	buf.Replace(2, "bin/run", "#!/usr/bin/env node\nconsole.log(1);\n")
	c := New(buf, Options{})

	_, e, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, parser.DialectJavaScript, e.Dialect)
}

func TestAST_ForcedDialect(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "")
	buf.Replace(1, "script.js", "let x: number = 1;")
	c := New(buf, Options{Dialect: parser.DialectTypeScript})

	_, e, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, parser.DialectTypeScript, e.Dialect)
}

func TestInvalidate(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "a;")
	c := New(buf, Options{})
	ctx := context.Background()

	_, err := c.CurrentState(ctx)
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.CurrentState(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, buf.Reads())
	assert.Equal(t, "1:1", c.Stats().Key)
}

func TestState_ReadErrorIsWrapped(t *testing.T) {
	buf := editor.NewMemoryBuffer(1, "a;")
	c := New(buf, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.State(ctx, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "failed to read buffer 1")
}
