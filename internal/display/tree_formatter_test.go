package display

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
)

func parse(t *testing.T, src string) *estree.Node {
	t.Helper()
	root, err := parser.Parse(context.Background(), src, parser.DialectTSX)
	require.NoError(t, err)
	return root
}

func TestNewTreeFormatter(t *testing.T) {
	formatter := NewTreeFormatter(FormatterOptions{})
	assert.Equal(t, "  ", formatter.options.Indent)
	assert.NotNil(t, formatter.options.Styles)
}

func TestTreeFormatter_NilTree(t *testing.T) {
	out, err := NewTreeFormatter(FormatterOptions{}).Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "No tree data available", out)
}

func TestTreeFormatter_Text(t *testing.T) {
	root := parse(t, "const a = 1;")

	out, err := NewTreeFormatter(FormatterOptions{Format: "text"}).Format(root)
	require.NoError(t, err)

	assert.Contains(t, out, "AST: 5 nodes, max depth 3")
	assert.Contains(t, out, "→ Program [0-12]")
	assert.Contains(t, out, `└─→ body[0]: VariableDeclaration [0-12]`)
	assert.Contains(t, out, `kind="const"`)
	assert.Contains(t, out, "declarations[0]: VariableDeclarator [6-11]")
	assert.Contains(t, out, `├─→ id: Identifier [6-7] name="a"`)
	assert.Contains(t, out, "└─→ init: Literal [10-11]")
	assert.Contains(t, out, "value=1")
}

func TestTreeFormatter_ShowLoc(t *testing.T) {
	root := parse(t, "let x;\nx = 2;")
	out, err := NewTreeFormatter(FormatterOptions{ShowLoc: true}).Format(root)
	require.NoError(t, err)
	assert.Contains(t, out, "AssignmentExpression [7-12] 2:0-2:5")
}

func TestTreeFormatter_MaxDepth(t *testing.T) {
	root := parse(t, "const a = 1;")

	out, err := NewTreeFormatter(FormatterOptions{MaxDepth: 1}).Format(root)
	require.NoError(t, err)
	assert.Contains(t, out, "VariableDeclaration [0-12]")
	assert.Contains(t, out, "(+3 more)")
	assert.NotContains(t, out, "Identifier")
}

func TestTreeFormatter_Compact(t *testing.T) {
	root := parse(t, "const a = 1;")
	out, err := NewTreeFormatter(FormatterOptions{Format: "compact"}).Format(root)
	require.NoError(t, err)
	assert.Equal(t, "Program → VariableDeclaration → VariableDeclarator (+1 more) → Identifier", out)
}

func TestTreeFormatter_JSON(t *testing.T) {
	root := parse(t, "const a = 1;")

	out, err := NewTreeFormatter(FormatterOptions{Format: "json", MaxDepth: 1}).Format(root)
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Body []struct {
			Type         string            `json:"type"`
			Kind         string            `json:"kind"`
			Declarations []json.RawMessage `json:"declarations"`
			Range        [2]int            `json:"range"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Program", decoded.Type)
	require.Len(t, decoded.Body, 1)
	assert.Equal(t, "VariableDeclaration", decoded.Body[0].Type)
	assert.Equal(t, "const", decoded.Body[0].Kind)
	assert.Equal(t, [2]int{0, 12}, decoded.Body[0].Range)
	assert.Nil(t, decoded.Body[0].Declarations, "pruned below max depth")
}

func TestTreeFormatter_YAML(t *testing.T) {
	root := parse(t, "x;")
	out, err := NewTreeFormatter(FormatterOptions{Format: "yaml"}).Format(root)
	require.NoError(t, err)
	assert.Contains(t, out, "type: Program")
	assert.Contains(t, out, "type: ExpressionStatement")
	assert.Contains(t, out, "name: x")
}

func TestTreeFormatter_UnknownFormat(t *testing.T) {
	_, err := NewTreeFormatter(FormatterOptions{Format: "xml"}).Format(parse(t, "x;"))
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	root := parse(t, "const a = 1;")
	assert.Same(t, root, Prune(root, 0))

	pruned := Prune(root, 2)
	assert.Equal(t, 3, estree.Count(pruned))
	assert.Equal(t, 5, estree.Count(root), "original is untouched")
}
