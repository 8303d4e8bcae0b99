package ws

import (
	"context"
	"log"
	"sync"

	"storefront-chat-service/internal/models"
	"storefront-chat-service/internal/observability"
)

// Hub maintains the active websocket connections per room and fans events
// out to them.
type Hub struct {
	rooms    map[string]map[string]Conn
	connInfo map[string]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[string]Conn),
		connInfo: make(map[string]ConnInfo),
	}
}

// Add registers a connection in a room.
func (h *Hub) Add(roomID string, conn Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]Conn)
	}
	h.rooms[roomID][conn.ID()] = conn
	h.connInfo[conn.ID()] = info
}

// Remove drops a connection from a room.
func (h *Hub) Remove(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.connInfo, connID)
}

// Broadcast sends the event to every connection in the room.
func (h *Hub) Broadcast(roomID string, event models.ServerEvent) {
	h.send(roomID, "", event)
}

// BroadcastExcept sends the event to every connection in the room other than
// exceptConnID. Typing indicators are never echoed back to their origin.
func (h *Hub) BroadcastExcept(roomID, exceptConnID string, event models.ServerEvent) {
	h.send(roomID, exceptConnID, event)
}

func (h *Hub) send(roomID, exceptConnID string, event models.ServerEvent) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[roomID]))
	for id, conn := range h.rooms[roomID] {
		if id == exceptConnID {
			continue
		}
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(event); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(roomID, conn.ID(), err)
			h.Remove(roomID, conn.ID())
		}
	}
}

func (h *Hub) publishWSError(roomID, connID string, err error) {
	h.mu.RLock()
	info, ok := h.connInfo[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	envelope := observability.WSEvent("ws_error", observability.WSEventPayload{
		RoomID: roomID,
		ConnID: info.ConnID,
		Reason: err.Error(),
	}, observability.IdentityPayload{DeviceID: info.DeviceID, IP: info.IP})
	_ = observability.PublishEvent(context.Background(), "ws_events.rooms", envelope,
		observability.BuildHeaders(info.RequestID, info.TraceID))
	observability.IncWSEvent("ws_error")
}
