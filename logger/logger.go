// Package logger carries slog attributes through a context, so that
// request-scoped fields, like the id the access log middleware assigns,
// land on every record logged further down the call chain.
package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const attrKey contextKey = "attrKey"

// ContextHandler wraps a base [slog.Handler] and folds any attributes
// carried on the context into each record before handing it off.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{Handler: handler}
}

// Handle implements [slog.Handler].
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		return h.Handler.Handle(ctx, record)
	}

	record.AddAttrs(attrs...)

	return h.Handler.Handle(ctx, record)
}

// Ctx returns a context carrying the given attributes on top of any it
// already holds. Pair with [ContextHandler] to get them logged.
func Ctx(ctx context.Context, toAppend ...slog.Attr) context.Context {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		attrs = []slog.Attr{}
	}

	attrs = append(attrs, toAppend...)
	return context.WithValue(ctx, attrKey, attrs)
}

// RequestID builds the per-request attr the access log middleware
// attaches to every inbound request's context.
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}
