// Package registry associates each websocket connection with exactly one
// room and one participant identity. It is the unit of addressing for all
// room broadcasts and, like the presence tracker, strictly process-local.
package registry

import (
	"errors"
	"sync"

	"storefront-chat-service/internal/models"
)

var ErrRoomMismatch = errors.New("connection already joined a different room")

// Session binds a connection to a room and a participant.
type Session struct {
	ConnID      string
	RoomID      string
	Participant models.Participant
}

// Registry tracks live room sessions keyed by connection id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Join records the connection's room session. Rejoining the same room
// overwrites the participant snapshot; joining a different room on a live
// connection is an error.
func (r *Registry) Join(connID, roomID string, participant models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[connID]; ok && existing.RoomID != roomID {
		return ErrRoomMismatch
	}
	r.sessions[connID] = Session{ConnID: connID, RoomID: roomID, Participant: participant}
	return nil
}

// Leave removes the connection's session and returns it for cleanup. The
// second return is false when the connection never joined.
func (r *Registry) Leave(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return s, ok
}

// Get returns the connection's session without removing it.
func (r *Registry) Get(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	return s, ok
}

// MembersOf returns a snapshot of every session currently in the room.
func (r *Registry) MembersOf(roomID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []Session
	for _, s := range r.sessions {
		if s.RoomID == roomID {
			members = append(members, s)
		}
	}
	return members
}

// HasParticipant reports whether the participant still has any live
// connection in the room. The grace-window removal re-checks through this at
// fire time.
func (r *Registry) HasParticipant(roomID, participantID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.RoomID == roomID && s.Participant.ID == participantID {
			return true
		}
	}
	return false
}
