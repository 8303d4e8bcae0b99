package models

import "encoding/json"

// Client-to-server event names.
const (
	EventJoinRoom    = "joinRoom"
	EventChatMessage = "chatMessage"
	EventReadMessage = "readMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
)

// Server-to-client event names.
const (
	EventMessageHistory = "messageHistory"
	EventMessage        = "message"
	EventReadUpdate     = "readUpdate"
	EventUsers          = "users"
	EventError          = "error"
)

// ClientEvent is the envelope read off a websocket connection.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the envelope written to websocket connections.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// JoinRoomPayload is the data of a joinRoom event.
type JoinRoomPayload struct {
	RoomID      string      `json:"roomId"`
	Participant Participant `json:"participant"`
}

// ChatMessagePayload is the data of a chatMessage event.
type ChatMessagePayload struct {
	Text string          `json:"text"`
	File *FileAttachment `json:"file,omitempty"`
}

// ReadMessagePayload is the data of a readMessage event.
type ReadMessagePayload struct {
	MessageID int `json:"messageId"`
}

// ReadUpdatePayload is broadcast when a read receipt is appended.
type ReadUpdatePayload struct {
	MessageID int          `json:"messageId"`
	ReadBy    ReadReceipts `json:"readBy"`
}

// TypingPayload is broadcast to the other connections in the room.
type TypingPayload struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

// PresenceEntry is one element of the users broadcast.
type PresenceEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
