package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/security"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "const a = 1;\nconst b = 2;\n")

	b, err := Open(3, path)
	require.NoError(t, err)

	ctx := context.Background()
	id, err := b.CurrentBufferID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	lines, err := b.ReadAllLines(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"const a = 1;", "const b = 2;"}, lines)

	token, err := b.ChangeToken(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), token)

	cur, err := b.CursorPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, editor.Cursor{Line: 1, Column: 1}, cur)
	assert.True(t, filepath.IsAbs(b.Name()))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(1, filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
	var fe *errors.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Operation)
}

func TestOpen_WithValidator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.ts")
	writeFile(t, path, strings.Repeat("x;\n", 1024))

	_, err := Open(1, path, WithValidator(security.NewFileValidator(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, security.ErrTooLarge)

	b, err := Open(1, path, WithValidator(security.NewFileValidator(8)))
	require.NoError(t, err)
	lines, err := b.ReadAllLines(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, lines, 1024)
}

func TestReload_TokenFollowsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "let x = 1;")
	b, err := Open(1, path)
	require.NoError(t, err)

	writeFile(t, path, "let x = 1;")
	changed, err := b.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "identical bytes keep the token")
	assert.Equal(t, int64(1), b.Stats().Token)

	writeFile(t, path, "let x = 2;")
	changed, err = b.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(2), b.Stats().Token)
	assert.Equal(t, "let x = 2;", b.Text())
}

func TestUnknownBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "x")
	b, err := Open(1, path)
	require.NoError(t, err)

	_, err = b.ChangeToken(context.Background(), 2)
	assert.Error(t, err)
	_, err = b.ReadAllLines(context.Background(), 2)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	writeFile(t, path, "let x = 1;")
	b, err := Open(1, path)
	require.NoError(t, err)

	changed := make(chan struct{}, 1)
	require.NoError(t, b.Watch(func(context.Context) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))
	defer b.Stop()

	require.Error(t, b.Watch(nil), "second watch is rejected")

	// Unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(dir, "other.ts"), "let y = 1;")
	writeFile(t, path, "let x = 2;")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
	assert.Eventually(t, func() bool { return b.Text() == "let x = 2;" }, 5*time.Second, 10*time.Millisecond)
	stats := b.Stats()
	assert.GreaterOrEqual(t, stats.Reloads, int64(1))
	assert.GreaterOrEqual(t, stats.Token, int64(2))
}

func TestStop_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "x")
	b, err := Open(1, path)
	require.NoError(t, err)

	assert.NoError(t, b.Stop())
	require.NoError(t, b.Watch(nil))
	assert.NoError(t, b.Stop())
	assert.NoError(t, b.Stop())
}

func TestWatch_DrivesReHighlight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	writeFile(t, path, "const a = foo;\n")
	b, err := Open(1, path)
	require.NoError(t, err)

	c := cache.New(b, cache.Options{Parser: parser.New(parser.Options{}), Registry: parser.NewRegistry()})
	rec := editor.NewRecorder(nil)
	ctrl := highlight.NewController(c, rec, highlight.Options{Debounce: 10 * time.Millisecond})
	defer ctrl.Close()

	ctx := context.Background()
	require.NoError(t, ctrl.Highlight(ctx, `Identifier[name="foo"]`))
	require.Len(t, rec.Regions(), 1)

	require.NoError(t, b.Watch(ctrl.ReHighlight))
	defer b.Stop()

	writeFile(t, path, "const a = foo;\nconst b = foo;\n")

	// The write may surface as several events; wait for the final content.
	assert.Eventually(t, func() bool { return len(rec.Regions()) == 2 }, 5*time.Second, 10*time.Millisecond)
}
