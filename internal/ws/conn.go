package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storefront-chat-service/internal/models"
)

// Conn is the controller-facing view of a websocket connection. Tests
// substitute in-memory fakes.
type Conn interface {
	ID() string
	Send(event models.ServerEvent) error
	Close() error
}

// ConnInfo carries handshake metadata kept for the lifetime of a connection,
// used when publishing websocket telemetry events.
type ConnInfo struct {
	ConnID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// wsConn wraps a gorilla connection. Broadcasts originate from many
// connection goroutines, so writes are serialized with a mutex.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewConn wraps an upgraded websocket connection.
func NewConn(id string, conn *websocket.Conn) Conn {
	return &wsConn{id: id, conn: conn}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(event models.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
