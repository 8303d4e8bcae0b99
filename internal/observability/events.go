package observability

// EventEnvelope wraps every event published to the storefront events
// exchange. Consumers route on event_type and event_name.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSEventPayload describes one websocket lifecycle event on a room
// connection.
type WSEventPayload struct {
	RoomID     string `json:"room_id,omitempty"`
	Event      string `json:"event"`
	ConnID     string `json:"conn_id"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// IdentityPayload carries the client identity captured at handshake time.
type IdentityPayload struct {
	DeviceID string `json:"device_id"`
	IP       string `json:"ip"`
}

// WSEvent assembles the envelope for a websocket lifecycle event.
func WSEvent(name string, ws WSEventPayload, identity IdentityPayload) EventEnvelope {
	ws.Event = name
	return EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload: map[string]interface{}{
			"ws":       ws,
			"identity": identity,
		},
	}
}

// BuildHeaders carries request correlation ids onto published events.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
