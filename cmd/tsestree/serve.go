package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/mcp"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/server"
)

// serveCommand runs the Vim channel server until interrupted
func serveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	srv := server.New(cfg)
	if socket := c.String("socket"); socket != "" {
		srv.SetSocketPath(socket)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	out := c.App.ErrWriter
	fmt.Fprintf(out, "Listening on %s\n", srv.SocketPath())

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case sig := <-sigChan:
		fmt.Fprintf(out, "Received signal %v, shutting down...\n", sig)
	case <-c.Context.Done():
	case <-stopped:
		fmt.Fprintln(out, "Server shutdown requested")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	<-stopped
	return nil
}

// mcpCommand serves the MCP tools on stdio until the client disconnects or a
// signal arrives.
func mcpCommand(c *cli.Context) error {
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v", err)
	}
	mcpServer, err := mcp.NewServer(cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- mcpServer.Start(ctx)
	}()

	shutdown := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := mcpServer.Shutdown(shutdownCtx); err != nil {
			debug.LogMCP("shutdown: %v", err)
		}
	}

	select {
	case err := <-errChan:
		shutdown()
		if err != nil {
			return debug.Fatal("MCP server error: %v", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...", sig)
		cancel()

		timer := time.NewTimer(2 * time.Second)
		defer timer.Stop()
		select {
		case err := <-errChan:
			shutdown()
			return err
		case <-timer.C:
			// Closing stdin breaks the stdio transport's read loop.
			os.Stdin.Close()
			shutdown()
			return nil
		}
	}
}
