package command

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"jarvis/internal/config"
)

type Speaker interface {
	Speak(text string) error
}

type AppFinder interface {
	FindLaunchTarget(name string) (path, launchID string)
	Len() int
}

type AppLauncher interface {
	Launch(path, launchID string) error
}

type AppCloser interface {
	Close(name string) (int, error)
}

type Opener interface {
	OpenPath(path string) error
	OpenURL(url string) error
}

type AI interface {
	TextQuery(ctx context.Context, prompt string) (string, error)
	CodeQuery(ctx context.Context, prompt string) (string, error)
	Transcribe(ctx context.Context, audioPath string) (string, error)
	ImageToText(ctx context.Context, imagePath string) (string, error)
	CaptionImage(ctx context.Context, imagePath string) (string, error)
}

// Recorder captures microphone audio into a WAV file.
type Recorder interface {
	RecordWAV(ctx context.Context, path string, d time.Duration) error
}

type DomainLookup interface {
	Lookup(query string) (string, error)
}

type FileScanner interface {
	Scan(dirs []string, out string) (int, error)
}

// Deps are the collaborators handlers act through.
type Deps struct {
	Speaker  Speaker
	Apps     AppFinder
	Launcher AppLauncher
	Closer   AppCloser
	Opener   Opener
	AI       AI
	Recorder Recorder
	Domains  DomainLookup
	Files    FileScanner
	Now      func() time.Time
}

// Rule pairs an intent predicate with its handler. Rules are evaluated in
// table order and the first match wins.
type Rule struct {
	Intent Intent
	Match  func(u string) bool
	Handle func(ctx context.Context, u string) Outcome
}

type Dispatcher struct {
	cfg   *config.Config
	deps  Deps
	rules []Rule
}

func New(cfg *config.Config, deps Deps) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	d := &Dispatcher{cfg: cfg, deps: deps}
	d.rules = []Rule{
		{Shutdown, d.isShutdown, d.shutdown},
		{OpenFileOrFolder, d.isOpenPath, d.openPath},
		{OpenApp, d.isOpenApp, d.openApp},
		{CloseApp, isClose, d.closeApp},
		{TextAIQuery, containsAny("using artificial intelligence"), d.textQuery},
		{VoiceTranscribe, containsAny("transcribe audio"), d.transcribe},
		{ImageToText, containsAny("extract text from image"), d.imageToText},
		{ImageCaption, containsAny("describe image"), d.captionImage},
		{CodeQuery, containsAny("debug code", "write code"), d.codeQuery},
		{WebsiteOpen, d.isWebsite, d.openWebsite},
		{FileScan, containsAny("scan files"), d.scanFiles},
		{TimeQuery, containsAny("the time"), d.tellTime},
	}

	return d
}

// Rules exposes the priority table.
func (d *Dispatcher) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Normalize turns raw recognised text into an utterance.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Classify returns the intent of the first matching rule without running
// its handler.
func (d *Dispatcher) Classify(raw string) Intent {
	u := Normalize(raw)
	if u == "" {
		return Unrecognized
	}
	for _, r := range d.rules {
		if r.Match(u) {
			return r.Intent
		}
	}
	return Unrecognized
}

// Dispatch runs the handler of the first matching rule. A handler's failure
// never falls through to later rules.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) Result {
	u := Normalize(raw)
	if u == "" {
		return Result{Intent: Unrecognized, Outcome: failed(ReasonEmpty, nil)}
	}

	log.Debug("Processing", "utterance", u)

	for _, r := range d.rules {
		if !r.Match(u) {
			continue
		}

		out := r.Handle(ctx, u)
		log.Debug("Handled", "intent", r.Intent, "ok", out.OK, "reason", out.Reason)
		if out.Err != nil {
			log.Error("Command failed", "intent", r.Intent, "err", out.Err)
		}
		return Result{Intent: r.Intent, Outcome: out}
	}

	d.say("I'm not sure what you mean. Please try again.")
	log.Warn("Unknown command", "utterance", u)
	return Result{Intent: Unrecognized, Outcome: failed(ReasonNotFound, nil)}
}

func (d *Dispatcher) say(text string) {
	if d.deps.Speaker == nil {
		return
	}
	if err := d.deps.Speaker.Speak(text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}

func containsAny(phrases ...string) func(string) bool {
	return func(u string) bool {
		for _, p := range phrases {
			if strings.Contains(u, p) {
				return true
			}
		}
		return false
	}
}
