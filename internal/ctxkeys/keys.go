// Package ctxkeys provides the context keys shared between the server
// middleware and the handlers it wraps.
package ctxkeys

import "context"

// Key is the type for all context keys in the application.
// Using a dedicated type prevents collisions with keys from other packages.
type Key string

const (
	// KeyRequestID holds the X-Request-ID of the current request.
	KeyRequestID Key = "request_id"
)

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, KeyRequestID, id)
}
