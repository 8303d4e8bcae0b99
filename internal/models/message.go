package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Participant identifies the sender side of a connection. The identity is
// supplied by the client at join time; the auth layer has already verified it
// before the connection reaches this service.
type Participant struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// FileAttachment describes an already-uploaded file referenced by a message.
// The chat service never sees raw file bytes, only the object-store URL.
type FileAttachment struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Value marshals the attachment for the JSONB column.
func (f FileAttachment) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan unmarshals the attachment from the JSONB column.
func (f *FileAttachment) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		return nil
	}
	return errors.New("unsupported attachment column type")
}

// ReadReceipt records that a participant has read a message.
type ReadReceipt struct {
	ParticipantID string    `json:"participantId"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReadReceipts is the append-only read_by list. Each participant appears at
// most once; ordering is arrival order.
type ReadReceipts []ReadReceipt

func (r ReadReceipts) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(ReadReceipts{})
	}
	return json.Marshal(r)
}

func (r *ReadReceipts) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = ReadReceipts{}
		return nil
	}
	return errors.New("unsupported read_by column type")
}

// Contains reports whether the participant already appears in the list.
func (r ReadReceipts) Contains(participantID string) bool {
	for _, rcpt := range r {
		if rcpt.ParticipantID == participantID {
			return true
		}
	}
	return false
}

// Message is a persisted room message. Everything except ReadBy is immutable
// once stored; ReadBy only ever grows.
type Message struct {
	ID        int             `db:"id" json:"id"`
	RoomID    string          `db:"room_id" json:"roomId"`
	Sender    Participant     `db:"sender" json:"sender"`
	Body      string          `db:"body" json:"text"`
	File      *FileAttachment `db:"attachment" json:"file,omitempty"`
	ReadBy    ReadReceipts    `db:"read_by" json:"readBy"`
	CreatedAt time.Time       `db:"created_at" json:"timestamp"`
}
