package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/hazyhaar/recallwatch/recall"
)

var (
	servefs   = flag.NewFlagSet("serve", flag.ExitOnError)
	addrFlag  = servefs.String("addr", ":8080", "address the API listens on")
	graceFlag = servefs.Duration("grace", 10*time.Second, "shutdown grace period")
	noScanner = servefs.Bool("no-scheduler", false, "serve the API without scheduled scans")
)

func serveCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "recallwatch [flags] serve [-addr :8080]",
		ShortHelp:  "serve the JSON API and run scheduled scans",
		FlagSet:    servefs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envVarPrefix)},
		Exec:       execServe,
	}
}

func execServe(parent context.Context, _ []string) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	logger, err := createLogger(*logLevelFlag, os.Stdout)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	var g run.Group

	g.Add(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-c:
			logger.Info("recallwatch: caught signal", "signal", sig.String())
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, func(error) {
		cancel()
	})

	if !*noScanner {
		g.Add(func() error {
			return svc.Run(ctx, func(rep *recall.Report) {
				logger.Info("recallwatch: report ready", "date", rep.Date, "risk", string(rep.RiskLevel))
			})
		}, func(error) {
			cancel()
		})
	}

	server := &http.Server{Handler: svc.Handler(), ReadHeaderTimeout: 5 * time.Second}
	ln, err := net.Listen("tcp", *addrFlag)
	if err != nil {
		return fmt.Errorf("listen %s: %w", *addrFlag, err)
	}
	logger.Info("recallwatch: listening", "addr", ln.Addr().String())
	g.Add(func() error {
		return server.Serve(ln)
	}, func(error) {
		shutdownCtx, done := context.WithTimeout(context.Background(), *graceFlag)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("recallwatch: shutdown", "error", err)
		}
	})

	err = g.Run()
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("recallwatch: exiting")
	return err
}
