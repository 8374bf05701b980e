package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	tserrors "github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/security"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	if err := v.validateHighlightConfig(&cfg.Highlight); err != nil {
		return err
	}
	if err := v.validateParserConfig(&cfg.Parser); err != nil {
		return err
	}
	if err := v.validateDisplayConfig(&cfg.Display); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateHighlightConfig(h *Highlight) error {
	for field, color := range map[string]string{"highlight.guifg": h.GuiFG, "highlight.guibg": h.GuiBG} {
		if color != "NONE" && !hexColor.MatchString(color) {
			return tserrors.NewConfigError(field, color, errors.New("expected #rrggbb or NONE"))
		}
	}
	if h.DebounceMs < 0 || h.DebounceMs > 10000 {
		return tserrors.NewConfigError("highlight.debounce-ms", strconv.Itoa(h.DebounceMs),
			fmt.Errorf("must be between 0 and 10000"))
	}
	return nil
}

func (v *Validator) validateParserConfig(p *Parser) error {
	if p.MaxFileKB < 0 {
		return tserrors.NewConfigError("parser.max-file-kb", strconv.Itoa(p.MaxFileKB), errors.New("must not be negative"))
	}
	if p.Dialect != "" {
		if _, err := parser.ParseDialect(p.Dialect); err != nil {
			return tserrors.NewConfigError("parser.default", p.Dialect, err)
		}
	}
	for _, r := range p.Rules {
		if !doublestar.ValidatePattern(r.Pattern) {
			return tserrors.NewConfigError("parser.dialect", r.Pattern, errors.New("invalid glob pattern"))
		}
		if _, err := parser.ParseDialect(r.Dialect); err != nil {
			return tserrors.NewConfigError("parser.dialect", r.Dialect, err)
		}
	}
	return nil
}

func (v *Validator) validateDisplayConfig(d *Display) error {
	switch d.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return tserrors.NewConfigError("display.color", d.Color, errors.New("expected auto, always or never"))
	}
	if d.MaxDepth < 0 {
		return tserrors.NewConfigError("display.max-depth", strconv.Itoa(d.MaxDepth), errors.New("must not be negative"))
	}
	return nil
}

// setSmartDefaults fills fields left empty by a partial config file
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Highlight.Group == "" {
		cfg.Highlight.Group = highlight.DefaultGroup
	}
	if cfg.Highlight.GuiFG == "" {
		cfg.Highlight.GuiFG = highlight.DefaultGuiFG
	}
	if cfg.Highlight.GuiBG == "" {
		cfg.Highlight.GuiBG = highlight.DefaultGuiBG
	}
	if cfg.Highlight.DebounceMs == 0 {
		cfg.Highlight.DebounceMs = int(highlight.DefaultDebounce.Milliseconds())
	}
	if cfg.Parser.MaxFileKB == 0 {
		cfg.Parser.MaxFileKB = security.DefaultMaxKB
	}
	if cfg.Display.Color == "" {
		cfg.Display.Color = ColorAuto
	}
}
