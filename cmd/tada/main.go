package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/telemetry"
	"github.com/Makepad-fr/tada/internal/todosync"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.Usage = cli.PrintHelp
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(err.Error())
		return 2
	}
	ui.SetColorMode(cfg.Color)
	ui.SetTheme(cfg.Theme)

	// Hand the remaining args to the CLI runner.
	args := fs.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, so its logs go to log_file or nowhere.
	fallback := io.Writer(os.Stderr)
	if args[0] == "tui" {
		fallback = io.Discard
	}
	logger, closer, err := logging.NewFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, fallback)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer closer.Close()

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "tada",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Warn("tracing disabled", "err", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("flushing traces", "err", err)
			}
		}()
	}

	syncer, err := newSyncer(cfg, logger)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}

	code := cli.Run(ctx, args, cli.Options{
		Group:  cfg.Group,
		Output: cfg.Output,
		Config: cfg,
		Syncer: syncer,
		Stdin:  os.Stdin,
		RunTUI: func(ctx context.Context) error { return tui.Run(ctx, syncer) },
	})
	if code != 0 {
		fmt.Fprintln(ui.Stderr())
	}
	return code
}

func newSyncer(cfg *config.Config, logger *log.Logger) (*todosync.Syncer, error) {
	opts := []remote.Option{
		remote.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		remote.WithLogger(logger),
		remote.WithUserAgent("tada/" + version),
	}
	ti, err := auth.GetToken()
	if err != nil {
		logger.Warn("reading credentials", "err", err)
	}
	if ti != nil {
		if ti.Expired(time.Now()) {
			logger.Warn("token has expired", "source", ti.Source)
		}
		opts = append(opts, remote.WithToken(ti.Token))
	}

	client, err := remote.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("remote store", "base_url", client.BaseURL(), "timeout", cfg.HTTPTimeout())
	return todosync.New(client, logger), nil
}
