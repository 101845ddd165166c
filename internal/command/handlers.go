package command

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"

	"jarvis/internal/ai"
	"jarvis/internal/domains"
)

var shutdownPhrases = []string{"power off", "shutdown", "quit", "exit", "stop listening", "turn off"}

const (
	openPrefix  = "open "
	closePrefix = "close "
)

func (d *Dispatcher) isShutdown(u string) bool {
	return containsAny(shutdownPhrases...)(u)
}

func (d *Dispatcher) shutdown(context.Context, string) Outcome {
	log.Info("Shutting down by voice command")
	d.say("Shutting down JARVIS A.I. Goodbye.")
	return Outcome{OK: true, Terminate: true}
}

// files and folders

func (d *Dispatcher) isOpenPath(u string) bool {
	_, ok := d.resolvePath(u)
	return ok
}

func (d *Dispatcher) openPath(_ context.Context, u string) Outcome {
	path, ok := d.resolvePath(u)
	if !ok {
		d.say("The specified file or folder does not exist.")
		return failed(ReasonNotFound, nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		d.say("The specified file or folder does not exist.")
		return failed(ReasonNotFound, err)
	}

	if err := d.deps.Opener.OpenPath(path); err != nil {
		d.say("Sorry, I couldn't open it.")
		return failed(ReasonFailed, fmt.Errorf("open %s: %w", path, err))
	}

	kind := "file"
	if info.IsDir() {
		kind = "folder"
	}
	d.say(fmt.Sprintf("Opening %s %s", kind, filepath.Base(path)))
	log.Info("Opened", "kind", kind, "path", path)
	return done()
}

// resolvePath maps "open <alias|path> [folder]" to an existing path.
func (d *Dispatcher) resolvePath(u string) (string, bool) {
	if !strings.HasPrefix(u, openPrefix) {
		return "", false
	}

	target := strings.TrimSpace(strings.TrimPrefix(u, openPrefix))
	bare := strings.TrimSpace(strings.ReplaceAll(target, "folder", ""))

	for _, t := range []string{target, bare} {
		if t == "" {
			continue
		}
		path := t
		if alias, ok := d.cfg.Aliases[t]; ok {
			path = alias
		}
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// applications

func appName(u, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(u, prefix))
}

// isOpenApp claims "open X" unless the catalog misses X and X is a known
// website, which is left to the website rule.
func (d *Dispatcher) isOpenApp(u string) bool {
	if !strings.HasPrefix(u, openPrefix) {
		return false
	}

	if d.deps.Apps != nil {
		if path, id := d.deps.Apps.FindLaunchTarget(appName(u, openPrefix)); path != "" || id != "" {
			return true
		}
	}

	return !d.isWebsite(u)
}

func isClose(u string) bool {
	return strings.HasPrefix(u, closePrefix)
}

func (d *Dispatcher) openApp(_ context.Context, u string) Outcome {
	name := appName(u, openPrefix)

	if d.deps.Apps == nil || d.deps.Apps.Len() == 0 {
		d.say("I don't have the list of installed applications. Please update the app list first.")
		return failed(ReasonUnavailable, nil)
	}

	path, id := d.deps.Apps.FindLaunchTarget(name)
	if path == "" && id == "" {
		log.Debug("App not found", "name", name)
		d.say(fmt.Sprintf("I couldn't find %s on your system.", name))
		return failed(ReasonNotFound, nil)
	}

	if err := d.deps.Launcher.Launch(path, id); err != nil {
		d.say(fmt.Sprintf("Sorry, I couldn't launch %s.", name))
		return failed(ReasonFailed, err)
	}

	d.say(fmt.Sprintf("Launching %s.", name))
	return done()
}

func (d *Dispatcher) closeApp(_ context.Context, u string) Outcome {
	name := appName(u, closePrefix)

	n, err := d.deps.Closer.Close(name)
	if err != nil {
		d.say(fmt.Sprintf("Sorry, I couldn't close %s.", name))
		return failed(ReasonFailed, err)
	}
	if n == 0 {
		d.say(fmt.Sprintf("I couldn't find any running app named %s.", name))
		return failed(ReasonNotFound, nil)
	}

	d.say(fmt.Sprintf("Closed %s.", name))
	return done()
}

// AI backend

type aiCall struct {
	prefix  string
	apology string
}

func (d *Dispatcher) answer(call aiCall, result string, err error) Outcome {
	if err != nil {
		d.say(call.apology)
		if errors.Is(err, ai.ErrNoResult) {
			return failed(ReasonNoResult, nil)
		}
		return failed(ReasonFailed, err)
	}

	log.Info("Answer", "text", result)
	d.say(call.prefix + result)
	return done()
}

func (d *Dispatcher) textQuery(ctx context.Context, u string) Outcome {
	res, err := d.deps.AI.TextQuery(ctx, u)
	return d.answer(aiCall{apology: "Sorry, I couldn't process the AI request."}, res, err)
}

func (d *Dispatcher) codeQuery(ctx context.Context, u string) Outcome {
	res, err := d.deps.AI.CodeQuery(ctx, u)
	return d.answer(aiCall{prefix: "Code assistance: ", apology: "Sorry, I couldn't assist with the code."}, res, err)
}

func (d *Dispatcher) transcribe(ctx context.Context, _ string) Outcome {
	call := aiCall{prefix: "I heard: ", apology: "Sorry, I couldn't transcribe the audio."}

	f, err := os.CreateTemp("", "jarvis-*.wav")
	if err != nil {
		d.say(call.apology)
		return failed(ReasonFailed, err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := d.deps.Recorder.RecordWAV(ctx, path, d.cfg.RecordFor); err != nil {
		d.say(call.apology)
		return failed(ReasonFailed, fmt.Errorf("record: %w", err))
	}

	res, err := d.deps.AI.Transcribe(ctx, path)
	return d.answer(call, res, err)
}

func (d *Dispatcher) imageToText(ctx context.Context, u string) Outcome {
	return d.withImage(ctx, u,
		aiCall{prefix: "Text in image: ", apology: "Sorry, I couldn't extract text from the image."},
		d.deps.AI.ImageToText)
}

func (d *Dispatcher) captionImage(ctx context.Context, u string) Outcome {
	return d.withImage(ctx, u,
		aiCall{prefix: "Image description: ", apology: "Sorry, I couldn't describe the image."},
		d.deps.AI.CaptionImage)
}

func (d *Dispatcher) withImage(ctx context.Context, u string, call aiCall, send func(context.Context, string) (string, error)) Outcome {
	path, ok := ImagePath(u, d.cfg.Pictures)
	if !ok {
		d.say("Please specify a valid image file in your Pictures directory.")
		log.Warn("Image file not found", "utterance", u)
		return failed(ReasonNotFound, nil)
	}

	res, err := send(ctx, path)
	return d.answer(call, res, err)
}

var imageExts = []string{".jpg", ".jpeg", ".png"}

// ImagePath takes the text after the last "image" as a file name under
// dir, defaulting the extension to .jpg. The file must exist inside dir.
func ImagePath(u, dir string) (string, bool) {
	i := strings.LastIndex(u, "image")
	if i < 0 {
		return "", false
	}

	name := strings.TrimSpace(u[i+len("image"):])
	if name == "" {
		return "", false
	}

	hasExt := false
	for _, ext := range imageExts {
		if strings.HasSuffix(name, ext) {
			hasExt = true
			break
		}
	}
	if !hasExt {
		name += ".jpg"
	}

	path := filepath.Join(dir, name)
	if rel, err := filepath.Rel(dir, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// websites

func (d *Dispatcher) lookupDomain(u string) string {
	if d.deps.Domains == nil {
		return ""
	}
	domain, err := d.deps.Domains.Lookup(u)
	if err != nil {
		log.Debug("Domain lookup failed", "err", err)
		return ""
	}
	return domain
}

func (d *Dispatcher) isWebsite(u string) bool {
	return d.lookupDomain(u) != ""
}

func (d *Dispatcher) openWebsite(_ context.Context, u string) Outcome {
	domain := d.lookupDomain(u)
	if domain == "" {
		return failed(ReasonNotFound, nil)
	}

	if err := d.deps.Opener.OpenURL(domains.URL(domain)); err != nil {
		d.say(fmt.Sprintf("Sorry, I couldn't open %s.", domain))
		return failed(ReasonFailed, err)
	}

	d.say("Opening " + domain)
	return done()
}

// local

func (d *Dispatcher) scanFiles(context.Context, string) Outcome {
	n, err := d.deps.Files.Scan(d.cfg.FullScanDirs, d.cfg.IndexPath)
	if err != nil {
		d.say("An error occurred while scanning files.")
		return failed(ReasonFailed, err)
	}

	log.Info("Scanned files", "count", n, "index", d.cfg.IndexPath)
	d.say(fmt.Sprintf("Scanned %d files and saved the index.", n))
	return done()
}

func (d *Dispatcher) tellTime(context.Context, string) Outcome {
	d.say("The time is " + d.deps.Now().Format("15:04:05"))
	return done()
}
