package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"jarvis/internal/apps"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	out := cli.StringP("out", "o", "installed_apps.csv", "Catalog file to write")
	timeout := cli.DurationP("timeout", "t", 2*time.Minute, "Give up scanning after this long")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	log.Info("Scanning for installed applications")

	records, err := apps.DefaultScanner().Scan(ctx)
	if err != nil {
		log.Error("Scan failed", "err", err)
		os.Exit(1)
	}

	if err := apps.Save(*out, records); err != nil {
		log.Error("Failed to write catalog", "path", *out, "err", err)
		os.Exit(1)
	}

	log.Info("Catalog written", "path", *out, "apps", len(records))
}
