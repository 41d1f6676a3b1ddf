package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var mcpfs = flag.NewFlagSet("mcp", flag.ExitOnError)

func mcpCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "mcp",
		ShortUsage: "recallwatch [flags] mcp",
		ShortHelp:  "serve the recall tools over MCP on stdio",
		FlagSet:    mcpfs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envVarPrefix)},
		Exec:       execMCP,
	}
}

func execMCP(parent context.Context, _ []string) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := createLogger(*logLevelFlag, os.Stderr)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	srv := mcp.NewServer(&mcp.Implementation{Name: "recallwatch", Version: "0.1.0"}, nil)
	svc.RegisterMCP(srv)
	logger.Info("recallwatch: mcp on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
