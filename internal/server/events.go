package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventDiffInvalidated = "diff-invalidated"
	writeTimeout         = 5 * time.Second
)

// event is a message pushed to /api/events subscribers.
type event struct {
	Type string `json:"type"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(ev event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(ev)
}

// hub fans events out to websocket subscribers.
type hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
		subs:   make(map[*subscriber]struct{}),
	}
}

// serve upgrades the request and holds the connection until the client
// goes away. Clients never send anything meaningful; reads only detect
// closure.
func (h *hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn}
	if !h.add(sub) {
		_ = conn.Close()
		return
	}
	defer h.remove(sub)

	h.logger.Debug("event subscriber connected", zap.String("remote", r.RemoteAddr))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("event subscriber read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *hub) add(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[sub] = struct{}{}
	return true
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	_ = sub.conn.Close()
}

func (h *hub) snapshot() []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	return subs
}

func (h *hub) broadcast(ev event) {
	for _, sub := range h.snapshot() {
		if err := sub.send(ev); err != nil {
			h.logger.Debug("event write failed", zap.Error(err))
			h.remove(sub)
		}
	}
}

// count reports the number of connected subscribers.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		_ = sub.conn.Close()
	}
}
