package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/display"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadWithRoot(configPath, c.String("root"))
	if err != nil {
		if configPath == "" {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if c.IsSet("dialect") {
		d, err := parser.ParseDialect(c.String("dialect"))
		if err != nil {
			return nil, errors.NewConfigError("dialect", c.String("dialect"), err)
		}
		cfg.Parser.Dialect = d.String()
	}
	if c.IsSet("allow-errors") {
		cfg.Parser.AllowErrors = c.Bool("allow-errors")
	}
	if c.IsSet("color") {
		switch mode := c.String("color"); mode {
		case config.ColorAuto, config.ColorAlways, config.ColorNever:
			cfg.Display.Color = mode
		default:
			return nil, errors.NewConfigError("color", mode, fmt.Errorf("must be auto, always or never"))
		}
	}
	return cfg, nil
}

// stylesFor picks colored or plain styles for the command's output.
func stylesFor(c *cli.Context, cfg *config.Config) *display.Styles {
	return display.NewStyles(display.IsColorEnabled(cfg.Display.Color, c.App.Writer))
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "tsestree",
		Usage:                  "Match ESQuery selectors against syntax trees and highlight the results",
		Version:                version.Full(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .tsestree.kdl merged over ~/.tsestree.kdl)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to look for the project config in",
			},
			&cli.StringFlag{
				Name:  "dialect",
				Usage: "Parse every file with this dialect (typescript, tsx, javascript, go, ...)",
			},
			&cli.BoolFlag{
				Name:  "allow-errors",
				Usage: "Keep the partial tree of files with syntax errors",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Color output: auto, always or never",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs to stderr",
			},
			&cli.BoolFlag{
				Name:    "debug-log",
				Usage:   "Write debug logs to a file in the temp directory (also works with mcp)",
				EnvVars: []string{"TSESTREE_DEBUG_LOG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Aliases:   []string{"i"},
				Usage:     "Show the syntax node at a position",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "line", Aliases: []string{"l"}, Usage: "1-based line", Value: 1},
					&cli.IntFlag{Name: "col", Usage: "1-based byte column", Value: 1},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Show every enclosing node"},
					&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
				},
				Action: inspectCommand,
			},
			{
				Name:      "query",
				Aliases:   []string{"q"},
				Usage:     "Print the nodes matching a selector",
				ArgsUsage: "FILE SELECTOR",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "Output as JSON"},
				},
				Action: queryCommand,
			},
			{
				Name:      "selectors",
				Usage:     "Suggest selectors for the nodes at a position",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "line", Aliases: []string{"l"}, Usage: "1-based line", Value: 1},
					&cli.IntFlag{Name: "col", Usage: "1-based byte column", Value: 1},
				},
				Action: selectorsCommand,
			},
			{
				Name:      "ast",
				Usage:     "Print the syntax tree of a file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "text, compact, json or yaml", Value: "text"},
					&cli.IntFlag{Name: "max-depth", Aliases: []string{"d"}, Usage: "Maximum depth, 0 for unlimited"},
					&cli.BoolFlag{Name: "loc", Usage: "Show line:column spans"},
				},
				Action: astCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Highlight selector matches and refresh them whenever the file changes",
				ArgsUsage: "FILE SELECTOR",
				Action:    watchCommand,
			},
			{
				Name:  "serve",
				Usage: "Serve Vim over a channel on a Unix socket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "socket", Aliases: []string{"s"}, Usage: "Socket path (overrides config)"},
				},
				Action: serveCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:   "build-id",
				Usage:  "Print the build fingerprint the Vim plugin compares with ping",
				Hidden: true,
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version.BuildID())
					return err
				},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
			}
			if c.Args().First() == "mcp" {
				// stdout belongs to the protocol
				debug.SetMCPMode(true)
				return nil
			}
			if c.Bool("debug-log") {
				debug.EnableDebug = "true"
				return nil
			}
			if c.Bool("debug") {
				debug.EnableDebug = "true"
			}
			if debug.IsDebugEnabled() {
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
	}
}

func main() {
	app := newApp()
	app.ErrWriter = os.Stderr
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
