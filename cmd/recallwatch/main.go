// Command recallwatch monitors recall notices for registered infant
// formula lots. It serves the JSON API with a scheduled scanner, runs a
// single scan cycle, or serves the recall tools over MCP on stdio.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/hazyhaar/recallwatch/dbopen"
	"github.com/hazyhaar/recallwatch/internal/store"
	"github.com/hazyhaar/recallwatch/recall"

	_ "modernc.org/sqlite"
)

const envVarPrefix = "RECALLWATCH"

var (
	rootfs       = flag.NewFlagSet("recallwatch", flag.ExitOnError)
	dbFlag       = rootfs.String("db", "data/recallwatch.db", "SQLite database path")
	catalogFlag  = rootfs.String("catalog", "", "source catalog YAML (default: embedded)")
	configFlag   = rootfs.String("config", "", "service config YAML (default: built-in defaults)")
	logLevelFlag = rootfs.String("log-level", "info", "log level (debug|info|warn|error)")
)

func main() {
	rootcmd := &ffcli.Command{
		Name:        "recallwatch",
		ShortUsage:  "recallwatch [flags] <subcommand> [subcommand flags]",
		ShortHelp:   "recallwatch watches recall notices for registered product lots",
		FlagSet:     rootfs,
		Subcommands: []*ffcli.Command{serveCommand(), scanCommand(), mcpCommand()},
		Options:     []ff.Option{ff.WithEnvVarPrefix(envVarPrefix)},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	if err := rootcmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// createLogger writes JSON logs to w. The MCP command passes stderr since
// stdout carries the protocol.
func createLogger(level string, w *os.File) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("log level %q not supported", level)
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger, nil
}

// openService opens the database, loads catalog and config, and syncs the
// source registry. The returned close func releases the database.
func openService(ctx context.Context, logger *slog.Logger) (*recall.Service, func() error, error) {
	cat, err := recall.LoadCatalog(*catalogFlag)
	if err != nil {
		return nil, nil, err
	}
	var cfg *recall.Config
	if *configFlag != "" {
		if cfg, err = recall.LoadConfig(*configFlag); err != nil {
			return nil, nil, err
		}
	}

	db, err := dbopen.Open(*dbFlag, dbopen.WithMkdirAll())
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	svc, err := newService(ctx, db, cat, cfg, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return svc, db.Close, nil
}

func newService(ctx context.Context, db *sql.DB, cat *recall.Catalog, cfg *recall.Config, logger *slog.Logger) (*recall.Service, error) {
	st, err := store.Open(ctx, db)
	if err != nil {
		return nil, err
	}
	svc, err := recall.New(st, cat, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := svc.SyncSources(ctx); err != nil {
		return nil, fmt.Errorf("sync sources: %w", err)
	}
	logger.Info("recallwatch: ready", "db", *dbFlag, "sources", len(cat.Sources))
	return svc, nil
}
