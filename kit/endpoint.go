// Package kit holds the transport-neutral endpoint type the MCP tools are
// built on, plus the logging middleware applied to it.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is a transport-neutral unit of work.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware decorates an Endpoint.
type Middleware func(Endpoint) Endpoint

// Logging logs every endpoint call with its tool name, duration and error.
func Logging(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{"tool", GetTool(ctx), "duration_ms", time.Since(start).Milliseconds()}
			if err != nil {
				logger.Warn("kit: endpoint failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("kit: endpoint ok", attrs...)
			}
			return resp, err
		}
	}
}

type contextKey string

const toolKey contextKey = "kit_tool"

// WithTool stores the tool or route name on ctx.
func WithTool(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolKey, name)
}

// GetTool returns the tool name stored by WithTool, or "".
func GetTool(ctx context.Context) string {
	v, _ := ctx.Value(toolKey).(string)
	return v
}
