package localserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub tracks the live local connections and implements parleyws.Poster by
// writing straight to them. A post to an unknown connection reports the same
// gone condition the management API would.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*client
}

type client struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: map[string]*client{}}
}

func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = &client{conn: conn}
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) PostToConnection(_ context.Context, _ string, connID string, data []byte) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("GoneException: connection %v is gone", connID)
	}

	// gorilla connections allow a single concurrent writer.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing to connection %v: %w", connID, err)
	}
	return nil
}
