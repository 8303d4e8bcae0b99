package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"storefront-chat-service/internal/chat"
	"storefront-chat-service/internal/models"
	"storefront-chat-service/internal/observability"
	"storefront-chat-service/internal/ws"
)

// ChatSocketHandler owns the websocket endpoint. It upgrades the connection
// and pumps client events into the session controller; one read goroutine
// per connection keeps that connection's events in arrival order.
type ChatSocketHandler struct {
	controller *chat.Controller
}

// NewChatSocketHandler constructs a ChatSocketHandler.
func NewChatSocketHandler(controller *chat.Controller) *ChatSocketHandler {
	return &ChatSocketHandler{controller: controller}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and starts the event loop.
func (h *ChatSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("storefront-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.MetaFromRequest(c.Request)
	info := ws.ConnInfo{
		ConnID:      uuid.NewString(),
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := ws.NewConn(info.ConnID, conn)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishWSEvent(ctx, "ws_connect", info, "")

	// net/http cancels the request context as soon as this handler returns;
	// the read loop outlives the request, so it runs on a detached context
	// that keeps the request's values.
	go h.readLoop(context.WithoutCancel(ctx), conn, client, info)
}

func (h *ChatSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, client ws.Conn, info ws.ConnInfo) {
	var closeReason string
	defer func() {
		h.controller.Disconnect(client)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishWSEvent(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishWSEvent(ctx, "ws_error", info, closeReason)
			}
			return
		}

		var event models.ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.sendError(client, "malformed event")
			continue
		}
		h.dispatch(ctx, client, info, event)
	}
}

func (h *ChatSocketHandler) dispatch(ctx context.Context, client ws.Conn, info ws.ConnInfo, event models.ClientEvent) {
	switch event.Event {
	case models.EventJoinRoom:
		observability.IncWSEvent(models.EventJoinRoom)
		var payload models.JoinRoomPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(client, "invalid payload")
			return
		}
		h.controller.Join(ctx, client, info, payload.RoomID, payload.Participant)

	case models.EventChatMessage:
		observability.IncWSEvent(models.EventChatMessage)
		var payload models.ChatMessagePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(client, "invalid payload")
			return
		}
		h.controller.SendMessage(ctx, client, payload)

	case models.EventReadMessage:
		observability.IncWSEvent(models.EventReadMessage)
		var payload models.ReadMessagePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(client, "invalid payload")
			return
		}
		h.controller.MarkRead(ctx, client, payload.MessageID)

	case models.EventTyping:
		observability.IncWSEvent(models.EventTyping)
		h.controller.Typing(client)

	case models.EventStopTyping:
		observability.IncWSEvent(models.EventStopTyping)
		h.controller.StopTyping(client)

	default:
		// Event names are client-controlled free text; they only reach the
		// metric label through the fixed names above.
		observability.IncWSEvent("unknown")
		h.sendError(client, "unknown event")
	}
}

func (h *ChatSocketHandler) sendError(client ws.Conn, reason string) {
	_ = client.Send(models.ServerEvent{Event: models.EventError, Data: reason})
}

func (h *ChatSocketHandler) publishWSEvent(ctx context.Context, name string, info ws.ConnInfo, reason string) {
	envelope := observability.WSEvent(name, observability.WSEventPayload{
		ConnID:     info.ConnID,
		DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
		Reason:     reason,
	}, observability.IdentityPayload{DeviceID: info.DeviceID, IP: info.IP})
	_ = observability.PublishEvent(ctx, "ws_events.rooms", envelope, observability.BuildHeaders(info.RequestID, info.TraceID))
}
