package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jarvis/internal/apps"
	"jarvis/internal/config"
	"jarvis/internal/domains"
	"jarvis/internal/files"
)

type speaker struct{ said []string }

func (s *speaker) Speak(text string) error {
	s.said = append(s.said, text)
	return nil
}

func (s *speaker) last() string {
	if len(s.said) == 0 {
		return ""
	}
	return s.said[len(s.said)-1]
}

type launcher struct {
	path, id string
	calls    int
	err      error
}

func (l *launcher) Launch(path, id string) error {
	l.calls++
	l.path, l.id = path, id
	return l.err
}

type closer struct {
	name    string
	running int
	err     error
}

func (c *closer) Close(name string) (int, error) {
	c.name = name
	return c.running, c.err
}

type opener struct {
	paths []string
	urls  []string
	err   error
}

func (o *opener) OpenPath(p string) error {
	o.paths = append(o.paths, p)
	return o.err
}

func (o *opener) OpenURL(u string) error {
	o.urls = append(o.urls, u)
	return o.err
}

type backend struct {
	prompts []string
	files   []string
	result  string
	err     error
	// seen reports whether an uploaded file existed during the call.
	seen bool
}

func (b *backend) reply(prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	return b.result, b.err
}

func (b *backend) upload(path string) (string, error) {
	b.files = append(b.files, path)
	_, err := os.Stat(path)
	b.seen = err == nil
	return b.result, b.err
}

func (b *backend) TextQuery(_ context.Context, p string) (string, error)    { return b.reply(p) }
func (b *backend) CodeQuery(_ context.Context, p string) (string, error)    { return b.reply(p) }
func (b *backend) Transcribe(_ context.Context, p string) (string, error)   { return b.upload(p) }
func (b *backend) ImageToText(_ context.Context, p string) (string, error)  { return b.upload(p) }
func (b *backend) CaptionImage(_ context.Context, p string) (string, error) { return b.upload(p) }

type recorder struct {
	path string
	dur  time.Duration
	err  error
}

func (r *recorder) RecordWAV(_ context.Context, path string, d time.Duration) error {
	r.path, r.dur = path, d
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(path, []byte("RIFF"), 0o644)
}

type domainList []string

func (l domainList) Lookup(q string) (string, error) {
	d, _ := domains.Match(q, l)
	return d, nil
}

type brokenDomains struct{}

func (brokenDomains) Lookup(string) (string, error) { return "", errors.New("no ranking file") }

type fixture struct {
	cfg      *config.Config
	speaker  *speaker
	launcher *launcher
	closer   *closer
	opener   *opener
	ai       *backend
	recorder *recorder
	d        *Dispatcher
}

var fixedNow = time.Date(2026, 10, 17, 14, 5, 9, 0, time.Local)

func newFixture(t *testing.T, catalog []apps.Record) *fixture {
	t.Helper()

	home := t.TempDir()
	cfg := config.Default(home)
	for _, dir := range []string{"Downloads", "Pictures", "Documents"} {
		require.NoError(t, os.MkdirAll(filepath.Join(home, dir), 0o755))
	}
	cfg.FullScanDirs = []string{filepath.Join(home, "Documents")}
	cfg.IndexPath = filepath.Join(home, "file_index.csv")

	f := &fixture{
		cfg:      cfg,
		speaker:  &speaker{},
		launcher: &launcher{},
		closer:   &closer{},
		opener:   &opener{},
		ai:       &backend{result: "forty two"},
		recorder: &recorder{},
	}

	f.d = New(cfg, Deps{
		Speaker:  f.speaker,
		Apps:     apps.NewCatalog(catalog),
		Launcher: f.launcher,
		Closer:   f.closer,
		Opener:   f.opener,
		AI:       f.ai,
		Recorder: f.recorder,
		Domains:  domainList{"google.com", "youtube.com", "discord.com", "github.com"},
		Files:    &files.Indexer{Extensions: config.FileTypes},
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

var discordCatalog = []apps.Record{
	{Name: "discord", ExecutablePath: "/opt/discord/Discord"},
	{Name: "calculator", LaunchID: "org.gnome.Calculator"},
}
