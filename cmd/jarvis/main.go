package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	log "log/slog"

	"jarvis/internal/apps"
	"jarvis/internal/assistant"
	"jarvis/internal/audio"
	"jarvis/internal/command"
	"jarvis/internal/config"
	"jarvis/internal/domains"
	"jarvis/internal/files"
	"jarvis/internal/ipc"
	"jarvis/internal/notify"
	"jarvis/internal/proxy"
	"jarvis/internal/tts"
	"jarvis/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configFile := cli.StringP("config", "c", "jarvis.yaml", "YAML config path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	logFile := cli.String("log-file", "", "Also write logs to this file, rotated by size")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for AI backends")
	backend := cli.String("backend", "", "AI backend: n8n or openai")
	webhookBase := cli.String("webhook-base", "", "Base URL of the n8n webhooks")
	replay := cli.StringP("replay", "r", "", "Transcribe an audio file, run it as one command and exit")
	mute := cli.Bool("mute", false, "Print replies instead of speaking them")
	trigger := cli.Bool("trigger", false, "Listen only when jarvis-ctl asks")
	cli.Parse()

	setupLogging(*logLevel, *logFile)

	log.Info("Booting up")

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("No env file loaded", "path", *envFile, "err", err)
	}

	cfg, err := config.Load(*configFile, config.Overrides{
		Proxy:       *proxyAddr,
		Backend:     *backend,
		WebhookBase: *webhookBase,
		TriggerOnly: *trigger,
	})
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded config", "backend", cfg.AI.Backend, "catalog", cfg.CatalogPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := proxy.NewHTTPClient(cfg.AI.Proxy, 0)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.AI.Proxy, "err", err)
		os.Exit(1)
	}

	whisper, err := stt.NewTranscriber(cfg.WhisperModel, stt.Options{Language: cfg.Language})
	if err != nil {
		log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	log.Debug("Loaded whisper")

	backendAI, err := newBackend(cfg, httpClient, whisper.TranscribeFile)
	if err != nil {
		log.Error("Failed to init AI backend", "err", err)
		os.Exit(1)
	}

	catalog, err := apps.Open(cfg.CatalogPath)
	switch {
	case errors.Is(err, apps.ErrCatalogMissing):
		log.Warn("Application catalog missing, run jarvis-appscan", "path", cfg.CatalogPath)
	case err != nil:
		log.Error("Failed to load application catalog", "path", cfg.CatalogPath, "err", err)
	default:
		log.Debug("Loaded catalog", "apps", catalog.Len())
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	var speaker command.Speaker = tts.NewSpeaker(cfg.Voice)
	if *mute {
		speaker = tts.Console{W: os.Stdout}
	}

	indexer := &files.Indexer{Extensions: cfg.FileTypes, SkipDirs: cfg.ScanSkipDirs}

	dispatcher := command.New(cfg, command.Deps{
		Speaker:  speaker,
		Apps:     catalog,
		Launcher: apps.NewLauncher(),
		Closer:   apps.NewCloser(),
		Opener:   apps.Desktop{},
		AI:       backendAI,
		Recorder: rec,
		Domains:  domains.NewTable(cfg.DomainsPath, cfg.DomainsTopN, time.Hour),
		Files:    indexer,
	})

	if *replay != "" {
		code := runReplay(ctx, cfg, dispatcher, speaker, indexer, whisper, *replay)
		rec.Close()
		whisper.Close()
		os.Exit(code)
	}

	mic := &assistant.Microphone{
		Recorder:    rec,
		Transcriber: whisper,
		Ducker:      audio.NewDucker(cfg.DuckFactor, "jarvis", "espeak-ng"),
		Notify:      notify.Desktop,
	}
	if chime, err := notify.LoadChime(cfg.ChimePath); err != nil {
		log.Warn("Listening chime disabled", "path", cfg.ChimePath, "err", err)
	} else {
		mic.Chime = chime
	}

	jarvis := assistant.New(cfg, dispatcher, speaker, mic, indexer)

	srv, err := ipc.StartServer(cfg.SocketPath, func(msg ipc.ControlMessage) error {
		switch msg.Cmd {
		case ipc.CmdSay:
			return jarvis.Submit(assistant.Request{Text: msg.Text})
		case ipc.CmdListen:
			return jarvis.Submit(assistant.Request{Listen: true})
		}
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return fmt.Errorf("unknown command %q", msg.Cmd)
	})
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	log.Info("Boot up - successful", "socket", cfg.SocketPath, "always_listen", cfg.AlwaysListen)

	runCtx, cancelRun := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// a dead watcher only means no hot reload
		if err := catalog.Watch(gctx); err != nil {
			log.Warn("Catalog watch stopped", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		defer cancelRun()
		jarvis.Startup()
		return jarvis.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Assistant stopped", "err", err)
	}

	log.Info("Shut down")
}

func setupLogging(level, file string) {
	var out io.Writer = os.Stdout
	noColor := false
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
		noColor = true
	}

	log.SetDefault(log.New(tint.NewHandler(out, &tint.Options{
		Level:   logLevelMap[level],
		NoColor: noColor,
	})))
}
