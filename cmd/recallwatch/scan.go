package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var (
	scanfs     = flag.NewFlagSet("scan", flag.ExitOnError)
	sourceFlag = scanfs.String("source", "", "scan only this source key")
	forceOCR   = scanfs.Bool("force-ocr", false, "transcribe images even when unchanged (with -source)")
)

func scanCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "scan",
		ShortUsage: "recallwatch [flags] scan [-source key]",
		ShortHelp:  "run one scan cycle and print the report as JSON",
		FlagSet:    scanfs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envVarPrefix)},
		Exec:       execScan,
	}
}

func execScan(parent context.Context, _ []string) error {
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

	var out any
	if *sourceFlag != "" {
		out, err = svc.ScanSource(ctx, *sourceFlag, *forceOCR)
	} else {
		out, err = svc.Scan(ctx)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
