// Command transform renders JSON or delimited lines through a Handlebars
// template.
//
//	transform file -t customer.hbs -i customers.csv -f xsv -d , -n
//	transform json -t customer.hbs -i '{"customer":{"name":"John"}}'
//	transform delimited -t customer.hbs -i $'name,age\nJohn,30' -d , -n
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/dago-node-transform/internal/config"
	"github.com/aescanero/dago-node-transform/internal/logging"
	"go.uber.org/zap"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// stdout carries rendered records, so diagnostics go to stderr
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding, "stderr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting transform",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	a, err := newApp(cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if isUsage(err) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		logger.Error("transform failed", zap.Error(err))
		return 1
	}
	return 0
}
