// Package server serves editor sessions over Vim's JSON channel protocol on
// a Unix socket.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
)

// Server accepts editor connections and runs one session per connection.
type Server struct {
	cfg          *config.Config
	listener     net.Listener
	startTime    time.Time
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	mu           sync.RWMutex
	running      bool
	socketPath   string // Custom socket path (empty uses the configured one)
	conns        map[net.Conn]struct{}
	sessions     int
}

// New creates a server for cfg.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:          cfg,
		startTime:    time.Now(),
		shutdownChan: make(chan struct{}),
		conns:        make(map[net.Conn]struct{}),
	}
}

// GetSocketPath returns the default path of the Unix socket
func GetSocketPath() string {
	return filepath.Join(os.TempDir(), "tsestree.sock")
}

// SetSocketPath sets a custom socket path for this server
func (s *Server) SetSocketPath(path string) {
	s.socketPath = path
}

// SocketPath returns the socket path this server is using
func (s *Server) SocketPath() string {
	if s.socketPath != "" {
		return s.socketPath
	}
	if s.cfg != nil && s.cfg.Server.Socket != "" {
		return s.cfg.Server.Socket
	}
	return GetSocketPath()
}

// Start begins listening for editor connections
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Remove a stale socket left by a crashed server
	socketPath := s.SocketPath()
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to create socket: %w", err)
	}
	s.listener = listener

	// Make socket accessible to user only
	os.Chmod(socketPath, 0600)

	s.wg.Add(1)
	go s.acceptLoop()

	debug.LogServer("server started on %s (pid: %d)", socketPath, os.Getpid())
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			debug.LogServer("accept error: %v", err)
			return
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.sessions++
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn runs a session until the editor hangs up or the server stops.
func (s *Server) serveConn(conn net.Conn) {
	client := newVimClient(conn)
	sess := newSession(client, s.cfg)
	debug.LogServer("[%s] editor connected", sess.id[:8])

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer client.close()
		return s.readLoop(ctx, g, conn, client, sess)
	})
	err := g.Wait()

	sess.close()
	conn.Close()

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		debug.LogServer("[%s] connection error: %v", sess.id[:8], err)
	}
	debug.LogServer("[%s] editor disconnected", sess.id[:8])
}

// readLoop decodes frames until the stream ends. Answers are routed to the
// pending calls; requests are handled concurrently so that a handler can
// wait for answers read by this loop.
func (s *Server) readLoop(ctx context.Context, g *errgroup.Group, r io.Reader, client *vimClient, sess *session) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var frame []json.RawMessage
		if err := dec.Decode(&frame); err != nil {
			return err
		}
		if len(frame) < 2 {
			debug.LogServer("ignoring short frame %v", frame)
			continue
		}
		var id int
		if err := json.Unmarshal(frame[0], &id); err != nil {
			debug.LogServer("ignoring frame without id: %v", err)
			continue
		}

		if id < 0 {
			client.deliver(id, frame[1])
			continue
		}

		var req Request
		if err := json.Unmarshal(frame[1], &req); err != nil {
			if id > 0 {
				if err := client.send(id, invalidRequest(err)); err != nil {
					return err
				}
			}
			continue
		}
		g.Go(func() error {
			resp := sess.handle(ctx, req)
			if id == 0 {
				// Sent with ch_sendexpr() and no callback
				return nil
			}
			return client.send(id, resp)
		})
	}
}

// Sessions returns how many editor connections have been accepted.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Wait blocks until the server is shut down
func (s *Server) Wait() {
	<-s.shutdownChan
}

// Shutdown stops accepting connections, hangs up on connected editors and
// waits for their sessions to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("server shutdown error: %w", ctx.Err())
	}

	os.Remove(s.SocketPath())
	close(s.shutdownChan)

	debug.LogServer("server shut down cleanly")
	return nil
}
