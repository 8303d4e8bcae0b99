package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestMeta is the client metadata captured once at websocket handshake
// time and attached to the connection's telemetry events.
type RequestMeta struct {
	DeviceID  string
	IP        string
	RequestID string
}

// MetaFromRequest extracts the client metadata from the handshake request.
// The IP honors the first X-Forwarded-For hop when one is present.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		DeviceID:  r.Header.Get("X-Device-Id"),
		IP:        clientIP(r),
		RequestID: r.Header.Get("X-Request-Id"),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
