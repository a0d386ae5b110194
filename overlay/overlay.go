package overlay

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/bikeview/viewer"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

//go:embed assets
var assets embed.FS

// ErrUnknownAction is returned for an action type the overlay does not handle.
var ErrUnknownAction = errors.New("unknown action")

// Action types accepted from clients.
const (
	ActionSelectLabel    = "selectLabel"
	ActionCloseInfoPanel = "closeInfoPanel"
	ActionSelectRepair   = "selectRepair"
	ActionSelectUpgrade  = "selectUpgrade"
)

// Message types sent to clients.
const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

const (
	defaultSendBuffer = 8
	writeTimeout      = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
)

// Action is one request from a client.
type Action struct {
	Type string `json:"type"`
	Part string `json:"part,omitempty"`
}

// Message is one frame sent to a client.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *viewer.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Controller receives the actions clients send. viewer.Viewer satisfies it.
type Controller interface {
	SelectLabel(id string) error
	CloseInfoPanel() error
	SelectRepair() error
	SelectUpgrade() error
}

// client is one connected browser.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// server is the implementation of the Server interface.
type server struct {
	mu *sync.Mutex

	addr       string
	controller Controller
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	clients map[uuid.UUID]*client
	last    []byte
}

// Server streams viewer snapshots to browsers over websockets and feeds their clicks back
// into the viewer. It serves a small page that draws the labels and the info panel.
type Server interface {
	// Handler returns the HTTP handler: the page at "/", the websocket at "/ws" and the
	// latest snapshot as JSON at "/snapshot".
	Handler() http.Handler

	// Publish sends a snapshot to every client. Clients that fall behind skip frames.
	//
	// Parameters:
	//   - snap: the snapshot
	Publish(snap viewer.Snapshot)

	// Dispatch forwards one action to the controller.
	//
	// Parameters:
	//   - a: the action
	//
	// Returns:
	//   - error: ErrUnknownAction or the controller's error
	Dispatch(a Action) error

	// Clients returns the number of connected clients.
	Clients() int

	// ListenAndServe serves on the configured address until ctx is canceled.
	//
	// Parameters:
	//   - ctx: stops the server when done
	//
	// Returns:
	//   - error: a listen error, nil after a clean shutdown
	ListenAndServe(ctx context.Context) error

	// Close disconnects every client.
	Close()
}

var _ Server = &server{}

// NewServer creates an overlay server driving the given controller.
//
// Parameters:
//   - controller: receives client actions
//   - options: functional options
//
// Returns:
//   - Server: the server
func NewServer(controller Controller, options ...ServerBuilderOption) Server {
	s := &server{
		mu:         &sync.Mutex{},
		addr:       "127.0.0.1:8089",
		controller: controller,
		logger:     slog.Default(),
		sendBuffer: defaultSendBuffer,
		clients:    make(map[uuid.UUID]*client),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	page, _ := fs.Sub(assets, "assets")
	mux.Handle("/", http.FileServerFS(page))
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/snapshot", s.serveSnapshot)
	return mux
}

func (s *server) Publish(snap viewer.Snapshot) {
	data, err := json.Marshal(Message{Type: MessageSnapshot, Snapshot: &snap})
	if err != nil {
		s.logger.Error("failed to encode snapshot", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = data
	for _, c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *server) Dispatch(a Action) error {
	if s.controller == nil {
		return fmt.Errorf("%w: no controller", ErrUnknownAction)
	}
	switch a.Type {
	case ActionSelectLabel:
		return s.controller.SelectLabel(a.Part)
	case ActionCloseInfoPanel:
		return s.controller.CloseInfoPanel()
	case ActionSelectRepair:
		return s.controller.SelectRepair()
	case ActionSelectUpgrade:
		return s.controller.SelectUpgrade()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func (s *server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Close()
	}()

	s.logger.Info("overlay listening", slog.String("addr", s.addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("overlay server: %w", err)
	}
	return nil
}

func (s *server) Close() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[uuid.UUID]*client)
	s.mu.Unlock()

	for _, c := range clients {
		close(c.send)
		_ = c.conn.Close()
	}
}

func (s *server) serveSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(last)
}

func (s *server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, s.sendBuffer)}
	s.mu.Lock()
	s.clients[c.id] = c
	if s.last != nil {
		c.send <- s.last
	}
	s.mu.Unlock()
	s.logger.Info("overlay client connected", slog.String("client", c.id.String()))

	go s.writeLoop(c)
	s.readLoop(c)
}

// writeLoop drains the client's queue until it is closed.
func (s *server) writeLoop(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("overlay write failed", slog.String("client", c.id.String()), slog.String("error", err.Error()))
			_ = c.conn.Close()
			s.drop(c)
			// Drain so Publish never blocks on a dead client.
			for range c.send {
			}
			return
		}
	}
}

// readLoop dispatches actions until the connection fails.
func (s *server) readLoop(c *client) {
	defer func() {
		s.drop(c)
		_ = c.conn.Close()
		s.logger.Info("overlay client disconnected", slog.String("client", c.id.String()))
	}()

	for {
		var a Action
		if err := c.conn.ReadJSON(&a); err != nil {
			var syntax *json.SyntaxError
			var typ *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typ) {
				s.reply(c, fmt.Errorf("malformed action: %w", err))
				continue
			}
			return
		}
		if err := s.Dispatch(a); err != nil {
			s.logger.Warn("overlay action rejected",
				slog.String("client", c.id.String()),
				slog.String("action", a.Type),
				slog.String("error", err.Error()),
			)
			s.reply(c, err)
		}
	}
}

// reply queues an error message for one client.
func (s *server) reply(c *client, err error) {
	data, mErr := json.Marshal(Message{Type: MessageError, Error: err.Error()})
	if mErr != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// drop unregisters a client and closes its queue once.
func (s *server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
}
