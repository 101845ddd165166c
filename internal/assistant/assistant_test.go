package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"jarvis/internal/command"
	"jarvis/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSpeaker struct {
	mu   sync.Mutex
	said []string
}

func (s *recordingSpeaker) Speak(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.said = append(s.said, text)
	return nil
}

func (s *recordingSpeaker) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.said...)
}

type fakeDispatcher struct {
	seen []string
}

func (d *fakeDispatcher) Dispatch(_ context.Context, raw string) command.Result {
	d.seen = append(d.seen, raw)
	switch raw {
	case "":
		return command.Result{Intent: command.Unrecognized, Outcome: command.Outcome{Reason: command.ReasonEmpty}}
	case "exit", "shutdown":
		return command.Result{Intent: command.Shutdown, Outcome: command.Outcome{OK: true, Terminate: true}}
	}
	return command.Result{Intent: command.TimeQuery, Outcome: command.Outcome{OK: true}}
}

type scriptedListener struct {
	replies []string
	errs    []error
	calls   int
}

func (l *scriptedListener) Listen(context.Context) (string, error) {
	i := l.calls
	l.calls++
	var err error
	if i < len(l.errs) {
		err = l.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(l.replies) {
		return l.replies[i], nil
	}
	return "exit", nil
}

type fakeScanner struct {
	n    int
	err  error
	dirs []string
	out  string
}

func (f *fakeScanner) Scan(dirs []string, out string) (int, error) {
	f.dirs, f.out = dirs, out
	return f.n, f.err
}

func testConfig(alwaysListen bool) *config.Config {
	cfg := config.Default("/home/tony")
	cfg.AlwaysListen = alwaysListen
	return cfg
}

func newAssistant(cfg *config.Config, l Listener, files command.FileScanner) (*Assistant, *fakeDispatcher, *recordingSpeaker) {
	d := &fakeDispatcher{}
	s := &recordingSpeaker{}
	a := New(cfg, d, s, l, files)
	a.retryDelay = time.Millisecond
	return a, d, s
}

func TestStartupAnnouncesScan(t *testing.T) {
	cfg := testConfig(false)
	files := &fakeScanner{n: 3}
	a, _, s := newAssistant(cfg, nil, files)

	a.Startup()

	assert.Equal(t, []string{
		"Scanning specific folders on startup...",
		"Startup file scan complete. 3 files indexed.",
		Greeting,
	}, s.lines())
	assert.Equal(t, cfg.StartupScanDirs, files.dirs)
	assert.Equal(t, cfg.IndexPath, files.out)
}

func TestStartupScanFailureStillGreets(t *testing.T) {
	a, _, s := newAssistant(testConfig(false), nil, &fakeScanner{err: errors.New("disk gone")})

	a.Startup()

	assert.Equal(t, []string{
		"Scanning specific folders on startup...",
		"An error occurred while scanning files.",
		Greeting,
	}, s.lines())
}

func TestRunStopsOnTerminatingCommand(t *testing.T) {
	a, d, s := newAssistant(testConfig(false), nil, &fakeScanner{})

	require.NoError(t, a.Submit(Request{Text: "what is the time"}))
	require.NoError(t, a.Submit(Request{Text: "shutdown"}))
	require.NoError(t, a.Submit(Request{Text: "never reached"}))

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, []string{"what is the time", "shutdown"}, d.seen)
	// the shutdown handler owns the farewell
	assert.Empty(t, s.lines())
}

func TestRunSaysGoodbyeOnCancel(t *testing.T) {
	a, d, s := newAssistant(testConfig(false), nil, &fakeScanner{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()

	require.NoError(t, a.Submit(Request{Text: "what is the time"}))
	require.Eventually(t, func() bool { return len(a.queue) == 0 }, time.Second, time.Millisecond)
	cancel()

	require.NoError(t, <-errc)
	assert.Equal(t, []string{Farewell}, s.lines())
	assert.Equal(t, []string{"what is the time"}, d.seen)
}

func TestContinuousListening(t *testing.T) {
	l := &scriptedListener{replies: []string{"open discord", "", "exit"}}
	a, d, _ := newAssistant(testConfig(true), l, &fakeScanner{})

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, []string{"open discord", "", "exit"}, d.seen)
	assert.Equal(t, 3, l.calls)
}

func TestQueuedRequestsRunBeforeListening(t *testing.T) {
	l := &scriptedListener{}
	a, d, _ := newAssistant(testConfig(true), l, &fakeScanner{})

	require.NoError(t, a.Submit(Request{Text: "what is the time"}))
	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, []string{"what is the time", "exit"}, d.seen)
}

func TestListenErrorIsNotFatal(t *testing.T) {
	l := &scriptedListener{errs: []error{errors.New("device busy")}}
	a, d, _ := newAssistant(testConfig(true), l, &fakeScanner{})

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, 2, l.calls)
	assert.Equal(t, []string{"exit"}, d.seen)
}

func TestListenTriggerWithoutMicrophone(t *testing.T) {
	a, d, _ := newAssistant(testConfig(false), nil, &fakeScanner{})

	require.NoError(t, a.Submit(Request{Listen: true}))
	require.NoError(t, a.Submit(Request{Text: "shutdown"}))
	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, []string{"shutdown"}, d.seen)
}

func TestSubmitReportsFullQueue(t *testing.T) {
	a, _, _ := newAssistant(testConfig(false), nil, &fakeScanner{})

	for i := 0; i < cap(a.queue); i++ {
		require.NoError(t, a.Submit(Request{Text: "hello"}))
	}
	assert.ErrorIs(t, a.Submit(Request{Text: "hello"}), ErrBusy)
}
