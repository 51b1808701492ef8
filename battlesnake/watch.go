package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchEvent is pushed to /watch clients after every move.
type WatchEvent struct {
	GameID    string `json:"game_id"`
	Turn      int    `json:"turn"`
	SnakeID   string `json:"snake_id"`
	Move      string `json:"move"`
	Code      int    `json:"code"`
	Policy    string `json:"policy"`
	Reason    string `json:"reason"`
	Simulated int    `json:"simulated"`
	ElapsedUS int64  `json:"elapsed_us"`
}

const watchBuffer = 64

// hub fans decisions out to websocket watchers. A watcher whose buffer is
// full is dropped.
type hub struct {
	mu      sync.Mutex
	clients map[chan WatchEvent]struct{}
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{clients: make(map[chan WatchEvent]struct{}), logger: logger}
}

func (h *hub) subscribe() chan WatchEvent {
	ch := make(chan WatchEvent, watchBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan WatchEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) publish(ev WatchEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			delete(h.clients, ch)
			close(ch)
			h.logger.Warn("dropping slow watcher")
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("watch upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	events := s.hub.subscribe()
	defer s.hub.unsubscribe(events)
	s.logger.Info("watcher connected", "remote", r.RemoteAddr)

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
