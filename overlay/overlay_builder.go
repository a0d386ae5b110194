package overlay

import (
	"log/slog"
	"net/http"
)

// ServerBuilderOption is a functional option for configuring a Server via NewServer.
type ServerBuilderOption func(*server)

// WithAddr sets the listen address. Defaults to "127.0.0.1:8089".
func WithAddr(addr string) ServerBuilderOption {
	return func(s *server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ServerBuilderOption {
	return func(s *server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSendBuffer sets how many frames may queue per client before frames are skipped.
//
// Parameters:
//   - n: queue length, values below 1 are ignored
//
// Returns:
//   - ServerBuilderOption: a function that applies the buffer size to a server
func WithSendBuffer(n int) ServerBuilderOption {
	return func(s *server) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// WithCheckOrigin replaces the websocket origin check, which by default only accepts
// same-host pages.
func WithCheckOrigin(check func(r *http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.upgrader.CheckOrigin = check
	}
}
