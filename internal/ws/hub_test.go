package ws

import (
	"errors"
	"sync"
	"testing"

	"storefront-chat-service/internal/models"
)

type fakeConn struct {
	id       string
	mu       sync.Mutex
	events   []models.ServerEvent
	failSend bool
	closed   bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event models.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("broken pipe")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) eventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestHubAddAndRemove(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{id: "c1"}

	hub.Add("lobby", conn, ConnInfo{ConnID: "c1"})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.Remove("lobby", "c1")
	if len(hub.rooms) != 0 {
		t.Fatalf("expected empty room to be dropped")
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	other := &fakeConn{id: "c3"}
	hub.Add("lobby", c1, ConnInfo{ConnID: "c1"})
	hub.Add("lobby", c2, ConnInfo{ConnID: "c2"})
	hub.Add("support", other, ConnInfo{ConnID: "c3"})

	hub.Broadcast("lobby", models.ServerEvent{Event: "users"})

	if c1.eventCount() != 1 || c2.eventCount() != 1 {
		t.Fatalf("expected both lobby conns to receive, got %d/%d", c1.eventCount(), c2.eventCount())
	}
	if other.eventCount() != 0 {
		t.Fatal("cross-room delivery must not happen")
	}
}

func TestHubBroadcastExcept(t *testing.T) {
	hub := NewHub()
	sender := &fakeConn{id: "c1"}
	peer := &fakeConn{id: "c2"}
	hub.Add("lobby", sender, ConnInfo{ConnID: "c1"})
	hub.Add("lobby", peer, ConnInfo{ConnID: "c2"})

	hub.BroadcastExcept("lobby", "c1", models.ServerEvent{Event: "typing"})

	if sender.eventCount() != 0 {
		t.Fatal("typing must not echo to the sender")
	}
	if peer.eventCount() != 1 {
		t.Fatalf("expected peer to receive typing, got %d events", peer.eventCount())
	}
}

func TestHubDropsDeadConnections(t *testing.T) {
	hub := NewHub()
	dead := &fakeConn{id: "c1", failSend: true}
	live := &fakeConn{id: "c2"}
	hub.Add("lobby", dead, ConnInfo{ConnID: "c1"})
	hub.Add("lobby", live, ConnInfo{ConnID: "c2"})

	hub.Broadcast("lobby", models.ServerEvent{Event: "message"})

	if !dead.closed {
		t.Fatal("dead connection should be closed")
	}
	if live.eventCount() != 1 {
		t.Fatalf("live connection should still receive, got %d", live.eventCount())
	}

	hub.Broadcast("lobby", models.ServerEvent{Event: "message"})
	if live.eventCount() != 2 {
		t.Fatalf("expected second delivery, got %d", live.eventCount())
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if _, ok := hub.rooms["lobby"]["c1"]; ok {
		t.Fatal("dead connection still registered")
	}
}
