// Package presence tracks which participants are currently online. The
// tracker is process-local state owned by the server instance that created
// it; it does not survive restarts and does not coordinate across instances.
package presence

import (
	"sync"

	"storefront-chat-service/internal/models"
)

// Participant status values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type entry struct {
	name   string
	status string
}

// Tracker maps participant ids to display name and online status. All
// operations are total; there are no error conditions.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*entry)}
}

// SetOnline upserts the participant as online. Idempotent; the display name
// is refreshed on every call.
func (t *Tracker) SetOnline(participantID, displayName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[participantID]; ok {
		e.name = displayName
		e.status = StatusOnline
		return
	}
	t.entries[participantID] = &entry{name: displayName, status: StatusOnline}
	t.order = append(t.order, participantID)
}

// SetOffline marks the participant offline without removing the entry, so
// the display name survives for the grace window.
func (t *Tracker) SetOffline(participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[participantID]; ok {
		e.status = StatusOffline
	}
}

// Remove deletes the entry entirely. Called once the grace-window check has
// confirmed no live connection remains for the participant.
func (t *Tracker) Remove(participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[participantID]; !ok {
		return
	}
	delete(t.entries, participantID)
	for i, id := range t.order {
		if id == participantID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// List returns a snapshot of all entries in insertion order.
func (t *Tracker) List() []models.PresenceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.PresenceEntry, 0, len(t.order))
	for _, id := range t.order {
		e := t.entries[id]
		out = append(out, models.PresenceEntry{ID: id, Name: e.name, Status: e.status})
	}
	return out
}
