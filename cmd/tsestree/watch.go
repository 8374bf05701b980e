package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/display"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/watch"
	"github.com/ediezindell/denops-typescript-estree.vim/pkg/pathutil"
)

// watchCommand highlights the matches of a selector in the terminal and
// re-renders them after every write to the file, until interrupted.
func watchCommand(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fb, err := watch.Open(1, c.Args().Get(0), watch.WithValidator(cfg.FileValidator()))
	if err != nil {
		return err
	}
	selector := c.Args().Get(1)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := display.NewTerminal(c.App.Writer, fb, stylesFor(c, cfg))
	ctrl := highlight.NewController(newCache(fb, cfg), term, cfg.HighlightOptions())
	defer ctrl.Close()

	if err := ctrl.Highlight(ctx, selector); err != nil {
		return err
	}
	if ctrl.Selector() == "" {
		// The selector was rejected; the message has been printed.
		return fmt.Errorf("invalid selector: %s", selector)
	}

	if err := fb.Watch(func(ctx context.Context) {
		ctrl.ReHighlight(ctx)
	}); err != nil {
		return err
	}
	defer fb.Stop()

	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl-C to stop)\n", pathutil.ToRelative(fb.Name(), cfg.Root))
	<-ctx.Done()

	stats := fb.Stats()
	debug.LogWatch("watch stopped: %d events, %d reloads, %d errors", stats.EventsProcessed, stats.Reloads, stats.Errors)
	return nil
}
