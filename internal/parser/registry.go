package parser

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
)

// Rule binds a doublestar glob to a dialect.
type Rule struct {
	Pattern string
	Dialect Dialect
}

// DefaultRules map the common JavaScript-family extensions.
var DefaultRules = []Rule{
	{Pattern: "**/*.ts", Dialect: DialectTypeScript},
	{Pattern: "**/*.mts", Dialect: DialectTypeScript},
	{Pattern: "**/*.cts", Dialect: DialectTypeScript},
	{Pattern: "**/*.tsx", Dialect: DialectTSX},
	{Pattern: "**/*.js", Dialect: DialectJavaScript},
	{Pattern: "**/*.jsx", Dialect: DialectJavaScript},
	{Pattern: "**/*.mjs", Dialect: DialectJavaScript},
	{Pattern: "**/*.cjs", Dialect: DialectJavaScript},
}

// enryNames maps go-enry language names to dialects.
var enryNames = map[string]Dialect{
	"TypeScript": DialectTypeScript,
	"TSX":        DialectTSX,
	"JavaScript": DialectJavaScript,
	"Go":         DialectGo,
	"Python":     DialectPython,
	"Rust":       DialectRust,
	"Java":       DialectJava,
	"C++":        DialectCpp,
	"C":          DialectCpp,
	"C#":         DialectCSharp,
	"PHP":        DialectPHP,
	"Zig":        DialectZig,
}

// Registry resolves the dialect of a buffer from its path and content.
// User rules are consulted first, then the defaults, then go-enry.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRegistry creates a registry with extra rules placed before the defaults.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	r.rules = append(r.rules, rules...)
	r.rules = append(r.rules, DefaultRules...)
	return r
}

// Add prepends a rule so it wins over every existing one.
func (r *Registry) Add(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append([]Rule{rule}, r.rules...)
}

// Rules returns a copy of the rule list in match order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// ForPath picks the dialect for path. content may be empty; only its first
// line is read, for a shebang.
func (r *Registry) ForPath(path, content string) Dialect {
	if path != "" {
		slashed := filepath.ToSlash(path)
		r.mu.RLock()
		for _, rule := range r.rules {
			matched, err := doublestar.Match(rule.Pattern, slashed)
			if err != nil {
				debug.LogParse("invalid dialect pattern %q: %v", rule.Pattern, err)
				continue
			}
			if matched {
				r.mu.RUnlock()
				return rule.Dialect
			}
		}
		r.mu.RUnlock()
	}

	if strings.HasPrefix(content, "#!") {
		line, _, _ := strings.Cut(content, "\n")
		if lang, safe := enry.GetLanguageByShebang([]byte(line)); safe {
			if d, ok := enryNames[lang]; ok {
				return d
			}
		}
	}
	if path != "" {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			if d, ok := enryNames[lang]; ok {
				return d
			}
		}
		if lang, safe := enry.GetLanguageByFilename(path); safe {
			if d, ok := enryNames[lang]; ok {
				return d
			}
		}
	}
	return DefaultDialect
}
