// Package chat orchestrates the room chat session lifecycle: join handling,
// message intake, read receipts, typing indicators and disconnects. All
// rejections are surfaced to the originating connection only, never
// broadcast to the room.
package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront-chat-service/internal/models"
	"storefront-chat-service/internal/moderation"
	"storefront-chat-service/internal/observability"
	"storefront-chat-service/internal/presence"
	"storefront-chat-service/internal/registry"
	"storefront-chat-service/internal/repositories"
	"storefront-chat-service/internal/telemetry"
	"storefront-chat-service/internal/ws"
)

// Defaults for the history backfill window and the per-room retention cap.
const (
	DefaultHistoryLimit = 50
	DefaultRetentionCap = 50
)

// Sender-facing error reasons.
const (
	errRoomRequired        = "room id required"
	errParticipantRequired = "participant required"
	errNotJoined           = "join a room first"
	errRoomMismatch        = "connection already joined another room"
	errInvalidMessageID    = "invalid message id"
	errLoadHistory         = "failed to load history"
	errSendMessage         = "failed to send message"
	errUpdateReadStatus    = "failed to update read status"
)

// Controller runs the per-connection session state machine. Each connection
// dispatches its events from a single goroutine, so a connection's own
// stream is processed strictly in arrival order; shared state is the
// presence tracker and the session registry, both mutex-serialized.
type Controller struct {
	hub       *ws.Hub
	presence  *presence.Tracker
	reaper    *presence.Reaper
	registry  *registry.Registry
	moderator *moderation.Moderator
	messages  repositories.MessageRepository
	audit     *telemetry.AuditEmitter

	historyLimit int
	retentionCap int
}

// Option tweaks controller construction.
type Option func(*Controller)

// WithHistoryLimit overrides the backfill window size.
func WithHistoryLimit(n int) Option {
	return func(c *Controller) { c.historyLimit = n }
}

// WithRetentionCap overrides the per-room retention cap.
func WithRetentionCap(n int) Option {
	return func(c *Controller) { c.retentionCap = n }
}

// WithAuditEmitter attaches an audit emitter for moderation rejections.
func WithAuditEmitter(audit *telemetry.AuditEmitter) Option {
	return func(c *Controller) { c.audit = audit }
}

// NewController wires the controller with its collaborators. Presence,
// registry and reaper instances belong to this controller; nothing here is
// process-global, so independent deployments never share state.
func NewController(hub *ws.Hub, tracker *presence.Tracker, reaper *presence.Reaper, reg *registry.Registry, moderator *moderation.Moderator, messages repositories.MessageRepository, opts ...Option) *Controller {
	c := &Controller{
		hub:          hub,
		presence:     tracker,
		reaper:       reaper,
		registry:     reg,
		moderator:    moderator,
		messages:     messages,
		historyLimit: DefaultHistoryLimit,
		retentionCap: DefaultRetentionCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Join moves the connection into the room: session registered, presence set
// online, recent history backfilled to the joining connection only, then the
// updated presence list broadcast to the room.
func (c *Controller) Join(ctx context.Context, conn ws.Conn, info ws.ConnInfo, roomID string, participant models.Participant) {
	if roomID == "" {
		c.sendError(conn, errRoomRequired)
		return
	}
	if participant.ID == "" {
		c.sendError(conn, errParticipantRequired)
		return
	}

	if err := c.registry.Join(conn.ID(), roomID, participant); err != nil {
		c.sendError(conn, errRoomMismatch)
		return
	}
	c.reaper.Cancel(roomID, participant.ID)
	c.presence.SetOnline(participant.ID, participant.Name)
	c.hub.Add(roomID, conn, info)

	history, err := c.messages.RecentMessages(ctx, roomID, c.historyLimit)
	if err != nil {
		log.Printf("history backfill failed room=%s: %v", roomID, err)
		c.sendError(conn, errLoadHistory)
	} else {
		_ = conn.Send(models.ServerEvent{Event: models.EventMessageHistory, Data: history})
	}

	c.broadcastPresence(roomID)
}

// SendMessage validates and moderates the message, persists it with the
// sender pre-seeded into readBy, broadcasts it to the room in persistence
// order, then prunes the room history back under the retention cap.
func (c *Controller) SendMessage(ctx context.Context, conn ws.Conn, payload models.ChatMessagePayload) {
	sess, ok := c.registry.Get(conn.ID())
	if !ok {
		c.sendError(conn, errNotJoined)
		return
	}

	if verdict := c.moderator.Check(payload.Text, payload.File); !verdict.Allowed {
		observability.IncModerationRejected(verdict.Reason)
		c.auditRejection(ctx, sess, verdict.Reason)
		c.sendError(conn, verdict.Reason)
		return
	}

	msg := models.Message{
		RoomID: sess.RoomID,
		Sender: sess.Participant,
		Body:   payload.Text,
		File:   payload.File,
		ReadBy: models.ReadReceipts{{
			ParticipantID: sess.Participant.ID,
			Timestamp:     time.Now().UTC(),
		}},
	}

	stored, err := c.messages.CreateMessage(ctx, msg)
	if err != nil {
		log.Printf("persist message failed room=%s: %v", sess.RoomID, err)
		c.sendError(conn, errSendMessage)
		return
	}

	c.hub.Broadcast(sess.RoomID, models.ServerEvent{Event: models.EventMessage, Data: stored})
	observability.IncMessagePersisted()

	c.prune(ctx, sess.RoomID)
}

// MarkRead appends the caller to the message's readBy list. Appending is
// idempotent; only the first append per participant produces a broadcast.
func (c *Controller) MarkRead(ctx context.Context, conn ws.Conn, messageID int) {
	sess, ok := c.registry.Get(conn.ID())
	if !ok {
		c.sendError(conn, errNotJoined)
		return
	}

	msg, err := c.messages.GetMessage(ctx, messageID)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		c.sendError(conn, errInvalidMessageID)
		return
	}
	if err != nil {
		log.Printf("read lookup failed message=%d: %v", messageID, err)
		c.sendError(conn, errUpdateReadStatus)
		return
	}
	if msg.RoomID != sess.RoomID {
		c.sendError(conn, errInvalidMessageID)
		return
	}
	if msg.ReadBy.Contains(sess.Participant.ID) {
		return
	}

	rcpt := models.ReadReceipt{ParticipantID: sess.Participant.ID, Timestamp: time.Now().UTC()}
	added, err := c.messages.AppendReadReceipt(ctx, messageID, rcpt)
	if err != nil {
		log.Printf("read update failed message=%d: %v", messageID, err)
		c.sendError(conn, errUpdateReadStatus)
		return
	}
	if !added {
		// Another connection of the same participant got there first.
		return
	}

	c.hub.Broadcast(sess.RoomID, models.ServerEvent{
		Event: models.EventReadUpdate,
		Data: models.ReadUpdatePayload{
			MessageID: messageID,
			ReadBy:    append(msg.ReadBy, rcpt),
		},
	})
}

// Typing broadcasts a typing indicator to every other connection in the room.
func (c *Controller) Typing(conn ws.Conn) {
	c.typingEvent(conn, models.EventTyping)
}

// StopTyping broadcasts the end of a typing indicator to every other
// connection in the room.
func (c *Controller) StopTyping(conn ws.Conn) {
	c.typingEvent(conn, models.EventStopTyping)
}

func (c *Controller) typingEvent(conn ws.Conn, event string) {
	sess, ok := c.registry.Get(conn.ID())
	if !ok {
		c.sendError(conn, errNotJoined)
		return
	}
	c.hub.BroadcastExcept(sess.RoomID, conn.ID(), models.ServerEvent{
		Event: event,
		Data: models.TypingPayload{
			ParticipantID: sess.Participant.ID,
			DisplayName:   sess.Participant.Name,
		},
	})
}

// Disconnect tears the session down: the participant goes offline
// immediately, but the presence entry is only removed after the grace window
// confirms no other live connection remains. The membership check happens
// when the timer fires, so a fast reconnect keeps the entry.
func (c *Controller) Disconnect(conn ws.Conn) {
	sess, ok := c.registry.Leave(conn.ID())
	if !ok {
		// Connected but never joined a room; nothing to clean up.
		return
	}

	c.hub.Remove(sess.RoomID, conn.ID())
	c.presence.SetOffline(sess.Participant.ID)
	c.broadcastPresence(sess.RoomID)

	c.reaper.Schedule(sess.RoomID, sess.Participant.ID, c.reapPresence)
}

func (c *Controller) reapPresence(roomID, participantID string) {
	if c.registry.HasParticipant(roomID, participantID) {
		return
	}
	c.presence.Remove(participantID)
	c.broadcastPresence(roomID)
}

// prune deletes the oldest messages of the room once the stored count
// exceeds the retention cap. Failures only log: the room stays temporarily
// over cap and self-corrects on the next accepted message.
func (c *Controller) prune(ctx context.Context, roomID string) {
	count, err := c.messages.CountByRoom(ctx, roomID)
	if err != nil {
		log.Printf("retention count failed room=%s: %v", roomID, err)
		return
	}
	if count <= c.retentionCap {
		return
	}

	ids, err := c.messages.OldestMessageIDs(ctx, roomID, count-c.retentionCap)
	if err != nil {
		log.Printf("retention query failed room=%s: %v", roomID, err)
		return
	}
	if err := c.messages.DeleteMessages(ctx, ids); err != nil {
		log.Printf("retention delete failed room=%s: %v", roomID, err)
		return
	}
	observability.AddMessagesPruned(len(ids))
}

func (c *Controller) broadcastPresence(roomID string) {
	c.hub.Broadcast(roomID, models.ServerEvent{Event: models.EventUsers, Data: c.presence.List()})
}

func (c *Controller) sendError(conn ws.Conn, reason string) {
	_ = conn.Send(models.ServerEvent{Event: models.EventError, Data: reason})
}

func (c *Controller) auditRejection(ctx context.Context, sess registry.Session, reason string) {
	if c.audit == nil {
		return
	}
	pid := sess.Participant.ID
	c.audit.Emit(ctx, "warn", "message rejected: "+reason, "", &pid)
}
