package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying id.
// An empty id is replaced with a new random one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ctx returns the current logger with the request ID of ctx attached.
func Ctx(ctx context.Context) zerolog.Logger {
	l := Get()
	if id := RequestID(ctx); id != "" {
		return l.With().Str("request_id", id).Logger()
	}
	return l
}
