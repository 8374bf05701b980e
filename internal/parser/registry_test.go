package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ForPath(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DialectTypeScript, r.ForPath("src/app.ts", ""))
	assert.Equal(t, DialectTypeScript, r.ForPath("app.mts", ""))
	assert.Equal(t, DialectTSX, r.ForPath("/abs/path/View.tsx", ""))
	assert.Equal(t, DialectJavaScript, r.ForPath("lib/index.jsx", ""))
	assert.Equal(t, DialectGo, r.ForPath("cmd/main.go", ""))
	assert.Equal(t, DialectPython, r.ForPath("tool.py", ""))
}

func TestRegistry_UserRulesWin(t *testing.T) {
	r := NewRegistry(Rule{Pattern: "**/*.vue", Dialect: DialectJavaScript})
	assert.Equal(t, DialectJavaScript, r.ForPath("components/App.vue", ""))

	r.Add(Rule{Pattern: "legacy/**/*.ts", Dialect: DialectJavaScript})
	assert.Equal(t, DialectJavaScript, r.ForPath("legacy/a/b.ts", ""))
	assert.Equal(t, DialectTypeScript, r.ForPath("modern/b.ts", ""))
	assert.Equal(t, "legacy/**/*.ts", r.Rules()[0].Pattern)
}

func TestRegistry_Shebang(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DialectJavaScript, r.ForPath("script", "#!/usr/bin/env node\nconsole.log(1)\n"))
	assert.Equal(t, DialectPython, r.ForPath("", "#!/usr/bin/env python3\nprint(1)\n"))
}

func TestRegistry_Default(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DefaultDialect, r.ForPath("", ""))
	assert.Equal(t, DefaultDialect, r.ForPath("notes", ""))
}

func TestParseDialect(t *testing.T) {
	for name, want := range map[string]Dialect{
		"ts":              DialectTypeScript,
		"TypeScriptReact": DialectTSX,
		"jsx":             DialectJavaScript,
		"golang":          DialectGo,
		"c#":              DialectCSharp,
	} {
		got, err := ParseDialect(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDialect("cobol")
	assert.Error(t, err)

	for _, d := range Dialects() {
		got, err := ParseDialect(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	assert.True(t, DialectTSX.ESTree())
	assert.False(t, DialectGo.ESTree())
	assert.True(t, DialectTSX.TypeScript())
	assert.False(t, DialectJavaScript.TypeScript())
}
