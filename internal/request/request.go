package request

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

const (
	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"
	// VisitorIDHeader identifies an anonymous visitor for bookmarks
	VisitorIDHeader = "X-Visitor-ID"
)

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// VisitorID returns the visitor id header and whether it is well formed.
// Visitor ids are opaque; only their shape is checked.
func VisitorID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(VisitorIDHeader))
	if !visitorIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the request id from the context, or "" if missing.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
