package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
)

// tomlFile mirrors the KDL layout for .tsestree.toml:
//
//	[highlight]
//	group = "SearchAst"
//	debounce-ms = 100
//
//	[[parser.dialect]]
//	pattern = "**/*.vue"
//	dialect = "typescript"
type tomlFile struct {
	Highlight struct {
		Group      *string `toml:"group"`
		GuiFG      *string `toml:"guifg"`
		GuiBG      *string `toml:"guibg"`
		DebounceMs *int    `toml:"debounce-ms"`
	} `toml:"highlight"`
	Parser struct {
		AllowErrors *bool         `toml:"allow-errors"`
		Default     *string       `toml:"default"`
		MaxFileKB   *int          `toml:"max-file-kb"`
		Dialect     []DialectRule `toml:"dialect"`
	} `toml:"parser"`
	Server struct {
		Socket *string `toml:"socket"`
	} `toml:"server"`
	Display struct {
		Color    *string `toml:"color"`
		MaxDepth *int    `toml:"max-depth"`
	} `toml:"display"`
}

// LoadTOML attempts to load configuration from the .tsestree.toml file in dir
func LoadTOML(dir string) (*Config, error) {
	path := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError("read", path, err)
	}
	cfg, err := parseTOML(content)
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

func parseTOML(content []byte) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, errors.NewConfigError("toml", "", fmt.Errorf("failed to parse TOML config: %w", err))
	}

	cfg := Default()
	setString(&cfg.Highlight.Group, f.Highlight.Group)
	setString(&cfg.Highlight.GuiFG, f.Highlight.GuiFG)
	setString(&cfg.Highlight.GuiBG, f.Highlight.GuiBG)
	if f.Highlight.DebounceMs != nil {
		cfg.Highlight.DebounceMs = *f.Highlight.DebounceMs
	}
	if f.Parser.AllowErrors != nil {
		cfg.Parser.AllowErrors = *f.Parser.AllowErrors
	}
	if f.Parser.MaxFileKB != nil {
		cfg.Parser.MaxFileKB = *f.Parser.MaxFileKB
	}
	setString(&cfg.Parser.Dialect, f.Parser.Default)
	cfg.Parser.Rules = append(cfg.Parser.Rules, f.Parser.Dialect...)
	setString(&cfg.Server.Socket, f.Server.Socket)
	setString(&cfg.Display.Color, f.Display.Color)
	if f.Display.MaxDepth != nil {
		cfg.Display.MaxDepth = *f.Display.MaxDepth
	}
	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
