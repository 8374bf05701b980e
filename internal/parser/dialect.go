package parser

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Dialect selects the grammar used to parse a buffer.
type Dialect string

const (
	DialectTypeScript Dialect = "typescript"
	DialectTSX        Dialect = "tsx"
	DialectJavaScript Dialect = "javascript"
	DialectGo         Dialect = "go"
	DialectPython     Dialect = "python"
	DialectRust       Dialect = "rust"
	DialectJava       Dialect = "java"
	DialectCpp        Dialect = "cpp"
	DialectCSharp     Dialect = "csharp"
	DialectPHP        Dialect = "php"
	DialectZig        Dialect = "zig"
)

// DefaultDialect is used when nothing identifies a buffer's language.
const DefaultDialect = DialectTSX

// ESTree reports whether the dialect produces ESTree node types. Other
// dialects expose the raw grammar with PascalCase kind names.
func (d Dialect) ESTree() bool {
	switch d {
	case DialectTypeScript, DialectTSX, DialectJavaScript:
		return true
	}
	return false
}

// TypeScript reports whether TypeScript syntax is accepted.
func (d Dialect) TypeScript() bool {
	return d == DialectTypeScript || d == DialectTSX
}

func (d Dialect) String() string { return string(d) }

// languageData holds the lazily built grammar handle for one dialect.
type languageData struct {
	once     sync.Once
	load     func() unsafe.Pointer
	language *tree_sitter.Language
}

var languages = map[Dialect]*languageData{
	DialectTypeScript: {load: tree_sitter_typescript.LanguageTypescript},
	DialectTSX:        {load: tree_sitter_typescript.LanguageTSX},
	DialectJavaScript: {load: tree_sitter_javascript.Language},
	DialectGo:         {load: tree_sitter_go.Language},
	DialectPython:     {load: tree_sitter_python.Language},
	DialectRust:       {load: tree_sitter_rust.Language},
	DialectJava:       {load: tree_sitter_java.Language},
	DialectCpp:        {load: tree_sitter_cpp.Language},
	DialectCSharp:     {load: tree_sitter_csharp.Language},
	DialectPHP:        {load: tree_sitter_php.LanguagePHP},
	DialectZig:        {load: tree_sitter_zig.Language},
}

func language(d Dialect) (*tree_sitter.Language, error) {
	data, ok := languages[d]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", d)
	}
	data.once.Do(func() {
		data.language = tree_sitter.NewLanguage(data.load())
	})
	return data.language, nil
}

// Dialects lists every supported dialect.
func Dialects() []Dialect {
	return []Dialect{
		DialectTypeScript, DialectTSX, DialectJavaScript,
		DialectGo, DialectPython, DialectRust, DialectJava,
		DialectCpp, DialectCSharp, DialectPHP, DialectZig,
	}
}

// ParseDialect resolves a user supplied name, accepting common aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "typescript", "ts":
		return DialectTypeScript, nil
	case "tsx", "typescriptreact":
		return DialectTSX, nil
	case "javascript", "js", "jsx", "javascriptreact":
		return DialectJavaScript, nil
	case "go", "golang":
		return DialectGo, nil
	case "python", "py":
		return DialectPython, nil
	case "rust", "rs":
		return DialectRust, nil
	case "java":
		return DialectJava, nil
	case "cpp", "c++", "c":
		return DialectCpp, nil
	case "csharp", "c#", "cs":
		return DialectCSharp, nil
	case "php":
		return DialectPHP, nil
	case "zig":
		return DialectZig, nil
	}
	return "", fmt.Errorf("unknown dialect %q", name)
}
