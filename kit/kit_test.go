package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogging_Error(t *testing.T) {
	// WHAT: Failed endpoints are logged at warn with the tool name.
	// WHY: MCP errors are returned as tool results, so logs are the only trace.
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	errFail := errors.New("fail")

	ep := Logging(logger)(func(context.Context, any) (any, error) { return nil, errFail })
	_, err := ep(WithTool(context.Background(), "recall_scan_all"), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "tool=recall_scan_all") {
		t.Fatalf("log output: %s", out)
	}
}

func TestGetTool_Default(t *testing.T) {
	if v := GetTool(context.Background()); v != "" {
		t.Fatalf("default tool: got %q", v)
	}
}
