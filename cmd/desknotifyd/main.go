// Package main is the entry point for the desknotifyd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/desknotify/internal/config"
	"github.com/jmylchreest/desknotify/internal/daemon"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/desknotify/desknotifyd.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging regardless of log.level")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("desknotifyd version", version)
		os.Exit(0)
	}

	// Set up structured logging; the level follows config reloads.
	levelVar := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelVar,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	if *verbose {
		level = slog.LevelDebug
	}
	levelVar.Set(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := daemon.Options{
		ConfigPath: *configPath,
		Logger:     logger,
	}
	if !*verbose {
		opts.LevelVar = levelVar
	}

	logger.Info("starting desknotifyd", "version", version)
	if err := daemon.New(cfg, opts).Run(ctx); err != nil {
		logger.Error("desknotifyd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("desknotifyd stopped")
}
