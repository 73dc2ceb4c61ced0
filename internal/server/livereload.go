package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/watcher"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Browsers never send anything but control frames.
	maxMessageSize = 512

	// Rapid saves from an editor collapse into one reload.
	reloadDebounce = 200 * time.Millisecond
)

// ReloadMessage tells browsers to re-fetch the current fragment.
type ReloadMessage struct {
	Type      string    `json:"type"`
	Paths     []string  `json:"paths,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans reload messages out to every connected browser.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  logging.Logger
}

// NewHub creates an empty hub.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger.WithComponent("livereload"),
	}
}

// ServeHTTP upgrades the request and keeps the socket open until the browser
// leaves or the hub closes. Only same-origin upgrades are accepted.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), h.logger)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{conn: conn, send: make(chan []byte, 16)}
	if !h.add(c) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.remove(c)

	ctx := conn.CloseRead(context.WithoutCancel(r.Context()))
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case message, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logger.Debug(ctx, "websocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Debug(context.Background(), "client connected", "clients", len(h.clients))
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		c.conn.CloseNow()
	}
}

// Len returns the number of connected browsers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. A client too slow to keep up is
// dropped; its browser reconnects.
func (h *Hub) Broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(context.Background(), err, "failed to marshal reload message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// watchContent broadcasts a reload whenever files below the content root or
// the assets directory change. The returned func stops watching.
func (s *Server) watchContent(ctx context.Context) (func(), error) {
	fw, err := watcher.NewFileWatcher(reloadDebounce, s.logger)
	if err != nil {
		return nil, err
	}

	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddHandler(s.reloadOnChange)

	for _, dir := range []string{s.config.Content.Root, s.config.Assets.Dir} {
		if err := fw.AddRecursive(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.logger.Warn(ctx, err, "not watching missing directory", "dir", dir)
				continue
			}
			fw.Stop()
			return nil, err
		}
	}

	fw.Start(ctx)
	return func() { _ = fw.Stop() }, nil
}

func (s *Server) reloadOnChange(ctx context.Context, events []watcher.ChangeEvent) error {
	paths := make([]string, len(events))
	for i, event := range events {
		paths[i] = event.Path
	}

	s.logger.Info(ctx, "content changed, reloading browsers",
		"files", len(paths),
		"clients", s.hub.Len())
	s.hub.Broadcast(ReloadMessage{Type: "reload", Paths: paths, Timestamp: time.Now().UTC()})
	return nil
}
