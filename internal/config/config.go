package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/security"
)

// Config file names looked up in the project directory and in $HOME.
const (
	KDLFileName  = ".tsestree.kdl"
	TOMLFileName = ".tsestree.toml"
)

// Display color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Version   int
	Root      string // Directory the project config was found in
	Highlight Highlight
	Parser    Parser
	Server    Server
	Display   Display
}

type Highlight struct {
	Group      string // Highlight group the regions are rendered with
	GuiFG      string
	GuiBG      string
	DebounceMs int // Quiet period before a re-highlight runs
}

type Parser struct {
	AllowErrors bool   // Keep the partial tree when the buffer has syntax errors
	Dialect     string // Force one dialect for every buffer
	MaxFileKB   int    // Files above this size are not loaded
	Rules       []DialectRule
}

// DialectRule maps a doublestar glob to a parser dialect.
type DialectRule struct {
	Pattern string `toml:"pattern"`
	Dialect string `toml:"dialect"`
}

type Server struct {
	Socket string // Unix socket the Vim channel server listens on
}

type Display struct {
	Color    string // auto, always or never
	MaxDepth int    // 0 = unlimited
}

// Default returns the built-in configuration.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		Version: 1,
		Root:    cwd,
		Highlight: Highlight{
			Group:      highlight.DefaultGroup,
			GuiFG:      highlight.DefaultGuiFG,
			GuiBG:      highlight.DefaultGuiBG,
			DebounceMs: int(highlight.DefaultDebounce / time.Millisecond),
		},
		Parser: Parser{
			AllowErrors: false,
			MaxFileKB:   security.DefaultMaxKB,
		},
		Server: Server{
			Socket: filepath.Join(os.TempDir(), "tsestree.sock"),
		},
		Display: Display{
			Color:    ColorAuto,
			MaxDepth: 0,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads configuration. An explicit path wins; otherwise the
// global ~/.tsestree.kdl is merged under the project file found in rootDir.
// The result is validated.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return cfg, NewValidator().ValidateAndSetDefaults(cfg)
	}

	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: Load global base config from ~/.tsestree.kdl (if exists)
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := loadDir(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config from project directory
	projectConfig, err := loadDir(searchDir)
	if err != nil {
		return nil, err
	}

	// Step 3: Merge configs (project overrides base, base rules kept after project rules)
	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		cfg = baseConfig
		if abs, err := filepath.Abs(searchDir); err == nil {
			cfg.Root = abs
		}
	default:
		cfg = Default()
	}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDir looks for the KDL file first, then the TOML file.
func loadDir(dir string) (*Config, error) {
	cfg, err := LoadKDL(dir)
	if err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(dir)
}

// LoadFile loads a single config file, choosing the format by extension.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError("read", path, err)
	}
	var cfg *Config
	if filepath.Ext(path) == ".toml" {
		cfg, err = parseTOML(content)
	} else {
		cfg, err = parseKDL(string(content))
	}
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		cfg.Root = abs
	}
	return cfg, nil
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base dialect rules are kept behind
// the project's own rules
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Parser.Rules) > 0 {
		seen := make(map[string]bool)
		rules := make([]DialectRule, 0, len(project.Parser.Rules)+len(base.Parser.Rules))
		for _, r := range append(append([]DialectRule{}, project.Parser.Rules...), base.Parser.Rules...) {
			if seen[r.Pattern] {
				continue
			}
			seen[r.Pattern] = true
			rules = append(rules, r)
		}
		merged.Parser.Rules = rules
	}

	return &merged
}

// HighlightOptions converts the highlight section for the controller.
func (c *Config) HighlightOptions() highlight.Options {
	return highlight.Options{
		Group:    c.Highlight.Group,
		GuiFG:    c.Highlight.GuiFG,
		GuiBG:    c.Highlight.GuiBG,
		Debounce: time.Duration(c.Highlight.DebounceMs) * time.Millisecond,
	}
}

// ParserOptions converts the parser section.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{AllowErrors: c.Parser.AllowErrors}
}

// ForcedDialect returns the dialect every buffer is parsed with, or "".
func (c *Config) ForcedDialect() parser.Dialect {
	if c.Parser.Dialect == "" {
		return ""
	}
	d, err := parser.ParseDialect(c.Parser.Dialect)
	if err != nil {
		return ""
	}
	return d
}

// Registry builds the dialect registry with the configured rules in front of
// the defaults.
func (c *Config) Registry() *parser.Registry {
	rules := make([]parser.Rule, 0, len(c.Parser.Rules))
	for _, r := range c.Parser.Rules {
		d, err := parser.ParseDialect(r.Dialect)
		if err != nil {
			continue
		}
		rules = append(rules, parser.Rule{Pattern: r.Pattern, Dialect: d})
	}
	return parser.NewRegistry(rules...)
}

// FileValidator returns the checks files pass before they are loaded.
func (c *Config) FileValidator() *security.FileValidator {
	return security.NewFileValidator(int64(c.Parser.MaxFileKB))
}
