package web

import (
	"log/slog"
	"net"
	"time"

	"weatherstation/internal/reading"
)

const (
	statusOK          = "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n"
	statusUnavailable = "HTTP/1.1 503 Service Unavailable\r\n\r\n"

	// responseCapacity bounds the full 200 response: status line and
	// headers plus the fixed-width page body.
	responseCapacity = len(statusOK) + reading.MaxPageSize
)

// handle performs exactly one request/response cycle on conn and always
// closes it before returning, on every exit path. Write failures are
// logged and not retried.
func (s *Server) handle(conn net.Conn) {
	start := time.Now()
	status := 200
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("close connection", "remote", conn.RemoteAddr().String(), "error", err)
		}
		slog.Info("request",
			"remote", conn.RemoteAddr().String(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if s.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			slog.Warn("set write deadline", "error", err)
		}
	}

	// Copy under the lock, then release before any network I/O so a slow
	// client never holds up the sampler.
	r, ok := s.store.Snapshot(s.cfg.LockWait)
	if !ok {
		status = 503
		if _, err := conn.Write([]byte(statusUnavailable)); err != nil {
			slog.Warn("write 503 failed", "remote", conn.RemoteAddr().String(), "error", err)
		}
		return
	}

	resp := make([]byte, 0, responseCapacity)
	resp = append(resp, statusOK...)
	resp = append(resp, reading.RenderPage(r)...)
	if _, err := conn.Write(resp); err != nil {
		slog.Warn("write response failed", "remote", conn.RemoteAddr().String(), "error", err)
	}
}
