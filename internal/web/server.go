// Package web serves the latest Reading over raw TCP: one fixed HTTP
// response per accepted connection, handled strictly one at a time.
package web

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"weatherstation/internal/state"
)

type Config struct {
	// Port to bind on all interfaces.
	Port int
	// Backlog passed to listen(2).
	Backlog int
	// LockWait bounds the read-side lock acquisition; past it the client
	// gets a 503 instead of blocking the sampler.
	LockWait time.Duration
	// WriteTimeout is the per-connection write deadline. Zero disables
	// it; a stalled client can then hold the serial accept loop.
	WriteTimeout time.Duration
}

type Server struct {
	cfg   Config
	store *state.Store
	ln    net.Listener
}

func NewServer(cfg Config, store *state.Store) *Server {
	return &Server{cfg: cfg, store: store}
}

// Listen binds the socket. Call before Serve; Addr is valid afterwards.
func (s *Server) Listen() error {
	ln, err := listenBacklog(s.cfg.Port, s.cfg.Backlog)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections for the life of the listener and handles
// each synchronously before accepting the next: requests are served
// strictly one at a time. Accept errors are logged and retried; a closed
// listener ends the loop with a nil error.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("accept failed", "error", err)
			continue
		}
		s.handle(conn)
	}
}

// Close shuts the listener down, unblocking Serve.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
