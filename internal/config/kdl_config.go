package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
)

// LoadKDL attempts to load configuration from the .tsestree.kdl file in dir
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fileError("read", kdlPath, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(dir); err == nil {
		cfg.Root = abs
	} else {
		cfg.Root = dir
	}
	return cfg, nil
}

// parseKDL reads the KDL form of the configuration over the defaults:
//
//	highlight { group "SearchAst"; guifg "#272822"; guibg "#f92672"; debounce-ms 100 }
//	parser { allow-errors false; default "tsx"; max-file-kb 4096; dialect "**/*.vue" "typescript" }
//	server { socket "/tmp/tsestree.sock" }
//	display { color "auto"; max-depth 0 }
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, errors.NewConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "highlight":
			for _, cn := range n.Children {
				assignSimpleString(cn, "group", func(v string) { cfg.Highlight.Group = v })
				assignSimpleString(cn, "guifg", func(v string) { cfg.Highlight.GuiFG = v })
				assignSimpleString(cn, "guibg", func(v string) { cfg.Highlight.GuiBG = v })
				if nodeName(cn) == "debounce-ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Highlight.DebounceMs = v
					}
				}
			}
		case "parser":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "allow-errors":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Parser.AllowErrors = b
					}
				case "default":
					if s, ok := firstStringArg(cn); ok {
						cfg.Parser.Dialect = s
					}
				case "max-file-kb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Parser.MaxFileKB = v
					}
				case "dialect":
					// dialect "<glob>" "<dialect>"
					args := collectStringArgs(cn)
					if len(args) != 2 {
						debug.Printf("config: dialect rule needs a pattern and a dialect, got %v", args)
						continue
					}
					cfg.Parser.Rules = append(cfg.Parser.Rules, DialectRule{Pattern: args[0], Dialect: args[1]})
				}
			}
		case "server":
			for _, cn := range n.Children {
				assignSimpleString(cn, "socket", func(v string) { cfg.Server.Socket = v })
			}
		case "display":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "color":
					if s, ok := firstStringArg(cn); ok {
						cfg.Display.Color = s
					} else if b, ok := firstBoolArg(cn); ok {
						cfg.Display.Color = ColorNever
						if b {
							cfg.Display.Color = ColorAlways
						}
					}
				case "max-depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Display.MaxDepth = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func fileError(op, path string, err error) error {
	return errors.NewFileError(op, path, err)
}
