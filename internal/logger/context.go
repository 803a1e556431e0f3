package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// EnsureRequestID returns ctx unchanged when it already carries a request
// id, otherwise it attaches a fresh one.
func EnsureRequestID(ctx context.Context) context.Context {
	if RequestIDFrom(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromCtx scopes the global logger to ctx: its request id, if any, then
// fields.
func FromCtx(ctx context.Context, fields ...zap.Field) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		fields = append([]zap.Field{zap.String("request_id", id)}, fields...)
	}
	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}
