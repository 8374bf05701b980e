package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/display"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/query"
)

// fileSession is one file loaded into an in-memory buffer.
type fileSession struct {
	buf   *editor.MemoryBuffer
	cache *cache.BufferCache
	term  *display.Terminal
}

func openFile(c *cli.Context, cfg *config.Config, path string) (*fileSession, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewFileError("resolve", path, err)
	}
	content, err := cfg.FileValidator().ReadFile(abs)
	if err != nil {
		return nil, err
	}

	buf := editor.NewMemoryBuffer(1, "")
	buf.Replace(1, abs, string(content))
	return &fileSession{
		buf:   buf,
		cache: newCache(buf, cfg),
		term:  display.NewTerminal(c.App.Writer, buf, stylesFor(c, cfg)),
	}, nil
}

func newCache(buf editor.Buffer, cfg *config.Config) *cache.BufferCache {
	return cache.New(buf, cache.Options{
		Parser:   parser.New(cfg.ParserOptions()),
		Registry: cfg.Registry(),
		Dialect:  cfg.ForcedDialect(),
	})
}

// tree parses the file. Empty files and syntax errors are returned as errors
// since there is nothing left to show.
func (fs *fileSession) tree(ctx context.Context) (*estree.Node, *cache.Entry, error) {
	ast, entry, err := fs.cache.Current(ctx)
	if stderrors.Is(err, errors.ErrEmptyBuffer) {
		return nil, nil, fmt.Errorf("%s: %w", fs.buf.Name(), err)
	}
	return ast, entry, err
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return fmt.Errorf("%s requires %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// nodeJSON is a matched or inspected node in --json output.
type nodeJSON struct {
	Type   string         `json:"type"`
	Range  [2]int         `json:"range"`
	Region *editor.Region `json:"region,omitempty"`
	Text   string         `json:"text,omitempty"`
}

func toNodeJSON(n *estree.Node, entry *cache.Entry) nodeJSON {
	out := nodeJSON{Type: string(n.Type)}
	if n.Range != nil {
		out.Range = [2]int{n.Range.Start, n.Range.End}
	}
	if entry != nil && n.Loc != nil {
		r := entry.Doc.Region(n.Loc)
		out.Region = &r
		out.Text = entry.Doc.RegionText(r)
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func inspectCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fs, err := openFile(c, cfg, c.Args().Get(0))
	if err != nil {
		return err
	}
	fs.buf.SetCursor(c.Int("line"), c.Int("col"))

	ctx := c.Context
	out := c.App.Writer
	if c.Bool("json") {
		// Messages would corrupt the JSON; report through a recorder instead.
		rec := editor.NewRecorder(nil)
		nodes, err := highlight.NewInspector(fs.cache, rec).Ancestry(ctx)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return fmt.Errorf("%s", rec.LastMessage().Text)
		}
		_, entry, err := fs.cache.Current(ctx)
		if err != nil {
			return err
		}
		if !c.Bool("all") {
			nodes = nodes[:1]
		}
		list := make([]nodeJSON, len(nodes))
		for i, n := range nodes {
			list[i] = toNodeJSON(n, entry)
		}
		return writeJSON(out, list)
	}

	insp := highlight.NewInspector(fs.cache, fs.term)
	if !c.Bool("all") {
		_, err := insp.Inspect(ctx)
		return err
	}
	nodes, err := insp.Ancestry(ctx)
	if err != nil || len(nodes) == 0 {
		return err
	}
	_, entry, err := fs.cache.Current(ctx)
	if err != nil {
		return err
	}
	styles := stylesFor(c, cfg)
	for i, n := range nodes {
		r := entry.Doc.Region(n.Loc)
		fmt.Fprintf(out, "%*s%s %s %s\n", i*2, "",
			styles.Type.Render(string(n.Type)),
			styles.Range.Render(fmt.Sprintf("[%d-%d]", n.Range.Start, n.Range.End)),
			styles.Dim.Render(r.String()))
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fs, err := openFile(c, cfg, c.Args().Get(0))
	if err != nil {
		return err
	}
	selector := c.Args().Get(1)

	ctx := c.Context
	ast, entry, err := fs.tree(ctx)
	if err != nil {
		return err
	}
	sel, err := query.Compile(selector)
	if err != nil {
		return err
	}
	nodes, err := sel.Match(ast)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("json") {
		list := make([]nodeJSON, len(nodes))
		for i, n := range nodes {
			list[i] = toNodeJSON(n, entry)
		}
		return writeJSON(out, list)
	}

	if len(nodes) == 0 {
		return fs.term.ShowMessage(ctx, editor.Warning("No matches found for selector: %s", selector))
	}
	group := cfg.HighlightOptions()
	if err := fs.term.DefineHighlightGroup(ctx, group.Group, group.GuiFG, group.GuiBG); err != nil {
		return err
	}
	if _, err := fs.term.AddHighlightRegions(ctx, group.Group, entry.Doc.Regions(nodes)); err != nil {
		return err
	}
	return fs.term.ShowMessage(ctx, editor.Info("Found %d matches", len(nodes)))
}

func selectorsCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fs, err := openFile(c, cfg, c.Args().Get(0))
	if err != nil {
		return err
	}
	fs.buf.SetCursor(c.Int("line"), c.Int("col"))

	sels, err := highlight.NewInspector(fs.cache, fs.term).Suggest(c.Context)
	if err != nil {
		return err
	}
	for _, s := range sels {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func astCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fs, err := openFile(c, cfg, c.Args().Get(0))
	if err != nil {
		return err
	}

	format := c.String("format")
	switch format {
	case "text", "compact", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want text, compact, json or yaml)", format)
	}
	depth := cfg.Display.MaxDepth
	if c.IsSet("max-depth") {
		depth = c.Int("max-depth")
	}

	ast, _, err := fs.tree(c.Context)
	if err != nil {
		return err
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:   format,
		ShowLoc:  c.Bool("loc"),
		MaxDepth: depth,
		Styles:   stylesFor(c, cfg),
	})
	text, err := formatter.Format(ast)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, text)
	return err
}
