package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, room_id, sender_id AS "sender.id", sender_name AS "sender.name", body, attachment, read_by, created_at`

// MessageRepository defines interactions with the message history store.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	AppendReadReceipt(ctx context.Context, messageID int, rcpt models.ReadReceipt) (bool, error)
	CountByRoom(ctx context.Context, roomID string) (int, error)
	OldestMessageIDs(ctx context.Context, roomID string, n int) ([]int, error)
	DeleteMessages(ctx context.Context, messageIDs []int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a room message. The caller seeds ReadBy, normally with
// the sender's own receipt.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	var stored models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_id, sender_id, sender_name, body, attachment, read_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+messageColumns,
		msg.RoomID, msg.Sender.ID, msg.Sender.Name, msg.Body, msg.File, msg.ReadBy).
		StructScan(&stored)
	return stored, err
}

// RecentMessages returns the newest limit messages of a room, ordered
// oldest-first for backfill delivery.
func (r *MessageRepo) RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	query := `SELECT * FROM (
            SELECT ` + messageColumns + ` FROM messages
            WHERE room_id=$1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent
        ORDER BY created_at ASC, id ASC`
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, query, roomID, limit)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// AppendReadReceipt appends the receipt to the message's read_by list unless
// the participant already appears there. Returns true when the list changed.
func (r *MessageRepo) AppendReadReceipt(ctx context.Context, messageID int, rcpt models.ReadReceipt) (bool, error) {
	entry, err := json.Marshal(models.ReadReceipts{rcpt})
	if err != nil {
		return false, err
	}
	marker, err := json.Marshal([]map[string]string{{"participantId": rcpt.ParticipantID}})
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET read_by = read_by || $2::jsonb
        WHERE id=$1 AND NOT (read_by @> $3::jsonb)`,
		messageID, entry, marker)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByRoom returns the number of stored messages for a room.
func (r *MessageRepo) CountByRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE room_id=$1`, roomID)
	return count, err
}

// OldestMessageIDs returns the n oldest message ids of a room, ascending by
// timestamp. Used by retention pruning.
func (r *MessageRepo) OldestMessageIDs(ctx context.Context, roomID string, n int) ([]int, error) {
	ids := []int{}
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM messages
        WHERE room_id=$1
        ORDER BY created_at ASC, id ASC
        LIMIT $2`, roomID, n)
	return ids, err
}

// DeleteMessages removes messages in bulk by id.
func (r *MessageRepo) DeleteMessages(ctx context.Context, messageIDs []int) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ANY($1)`, pq.Array(messageIDs))
	return err
}
