package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/hazyhaar/recallwatch/dbopen"
	"github.com/hazyhaar/recallwatch/recall"
)

func TestCreateLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warn", "error"} {
		if _, err := createLogger(lvl, os.Stderr); err != nil {
			t.Errorf("level %s: %v", lvl, err)
		}
	}
	if _, err := createLogger("loud", os.Stderr); err == nil {
		t.Fatal("unknown level accepted")
	}
}

func TestNewService_SyncsEmbeddedCatalog(t *testing.T) {
	cat, err := recall.LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := newService(context.Background(), dbopen.OpenMemory(t), cat, nil, logger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	srcs, err := svc.Sources(context.Background(), recall.SourceFilter{})
	if err != nil || len(srcs) != len(cat.Sources) {
		t.Fatalf("synced sources: %d %v", len(srcs), err)
	}
}
