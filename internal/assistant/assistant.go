package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"jarvis/internal/command"
	"jarvis/internal/config"
)

const (
	Greeting = "Hello, I am JARVIS A.I."
	Farewell = "Goodbye"
)

var ErrBusy = errors.New("command queue is full")

type Dispatcher interface {
	Dispatch(ctx context.Context, raw string) command.Result
}

// Listener captures one spoken utterance and returns its text.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Request is one unit of work for the loop: a typed utterance, or a
// trigger for a single listen cycle when Listen is set.
type Request struct {
	Text   string
	Listen bool
}

type Assistant struct {
	cfg        *config.Config
	dispatcher Dispatcher
	speaker    command.Speaker
	listener   Listener
	files      command.FileScanner

	queue      chan Request
	retryDelay time.Duration
}

func New(cfg *config.Config, d Dispatcher, speaker command.Speaker, listener Listener, files command.FileScanner) *Assistant {
	return &Assistant{
		cfg:        cfg,
		dispatcher: d,
		speaker:    speaker,
		listener:   listener,
		files:      files,
		queue:      make(chan Request, 16),
		retryDelay: time.Second,
	}
}

// Submit queues a request without blocking. Safe for concurrent use.
func (a *Assistant) Submit(req Request) error {
	select {
	case a.queue <- req:
		return nil
	default:
		return ErrBusy
	}
}

// Startup indexes the user folders and greets.
func (a *Assistant) Startup() {
	a.say("Scanning specific folders on startup...")

	n, err := a.files.Scan(a.cfg.StartupScanDirs, a.cfg.IndexPath)
	if err != nil {
		log.Error("Startup file scan failed", "err", err)
		a.say("An error occurred while scanning files.")
	} else {
		log.Info("Startup file scan done", "files", n, "index", a.cfg.IndexPath)
		a.say(fmt.Sprintf("Startup file scan complete. %d files indexed.", n))
	}

	a.say(Greeting)
}

// Run processes requests one at a time until ctx ends or a command asks to
// terminate. Listening continuously is controlled by cfg.AlwaysListen.
func (a *Assistant) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			a.say(Farewell)
			return nil
		}

		var (
			req Request
			got bool
		)
		select {
		case req = <-a.queue:
			got = true
		default:
		}

		if !got && !a.listening() {
			select {
			case <-ctx.Done():
				continue
			case req = <-a.queue:
			}
		} else if !got {
			req = Request{Listen: true}
		}

		if req.Listen {
			text, err := a.listen(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Warn("Listening failed", "err", err)
				a.pause(ctx)
				continue
			}
			req.Text = text
		}

		if a.Handle(ctx, req.Text) {
			return nil
		}
	}
}

// Handle dispatches one utterance. It reports whether the assistant should stop.
func (a *Assistant) Handle(ctx context.Context, text string) bool {
	res := a.dispatcher.Dispatch(ctx, text)
	if res.Reason == command.ReasonEmpty {
		return false
	}

	args := []any{"intent", res.Intent, "ok", res.OK}
	if res.Reason != command.ReasonNone {
		args = append(args, "reason", res.Reason)
	}
	if res.Err != nil {
		args = append(args, "err", res.Err)
	}
	log.Info("Handled command", args...)

	return res.Terminate
}

func (a *Assistant) listening() bool {
	return a.listener != nil && a.cfg.AlwaysListen
}

func (a *Assistant) listen(ctx context.Context) (string, error) {
	if a.listener == nil {
		return "", errors.New("no microphone configured")
	}
	text, err := a.listener.Listen(ctx)
	if err != nil {
		return "", err
	}
	log.Info("You said", "text", text)
	return text, nil
}

func (a *Assistant) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(a.retryDelay):
	}
}

func (a *Assistant) say(text string) {
	if err := a.speaker.Speak(text); err != nil {
		log.Error("Failed to speak", "text", text, "err", err)
	}
}
