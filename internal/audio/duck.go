package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxVolume = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id       int
	from, to int
}

// Pactl runs a pactl subcommand and returns its stdout.
type Pactl func(ctx context.Context, args ...string) ([]byte, error)

func runPactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

// Ducker lowers every other playback stream while the microphone is open.
// Streams whose application.name is listed in Keep are left alone.
type Ducker struct {
	Keep      []string
	Factor    float64
	MinVolume int
	Fade      time.Duration
	Pactl     Pactl

	mu     sync.Mutex
	active bool
	saved  map[int]int
}

func NewDucker(factor float64, keep ...string) *Ducker {
	return &Ducker{
		Keep:   keep,
		Factor: factor,
		Fade:   150 * time.Millisecond,
		Pactl:  runPactl,
		saved:  make(map[int]int),
	}
}

// Duck scales foreign streams by Factor, never below MinVolume.
func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.saved = make(map[int]int, len(inputs))
	fades := make([]fade, 0, len(inputs))
	for _, in := range inputs {
		to := int(math.Round(float64(in.Volume) * d.Factor))
		to = clamp(max(to, d.MinVolume))
		d.saved[in.ID] = in.Volume
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: to})
	}

	if err := d.apply(ctx, fades); err != nil {
		return err
	}
	d.active = true
	return nil
}

// Restore fades ducked streams back. Streams that appeared after Duck are ignored.
func (d *Ducker) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, in := range inputs {
		if orig, ok := d.saved[in.ID]; ok {
			fades = append(fades, fade{id: in.ID, from: in.Volume, to: orig})
		}
	}

	if err := d.apply(ctx, fades); err != nil {
		return err
	}
	d.saved = make(map[int]int)
	d.active = false
	return nil
}

// While ducks other streams for the duration of fn. Ducking errors never stop fn.
func (d *Ducker) While(ctx context.Context, fn func() error) (duckErr, err error) {
	duckErr = d.Duck(ctx)
	err = fn()
	if rerr := d.Restore(context.WithoutCancel(ctx)); rerr != nil && duckErr == nil {
		duckErr = rerr
	}
	return duckErr, err
}

func (d *Ducker) list(ctx context.Context) ([]sinkInput, error) {
	out, err := d.Pactl(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var res []sinkInput
	for _, in := range parseSinkInputs(string(out)) {
		if !d.keep(in.AppName) {
			res = append(res, in)
		}
	}
	return res, nil
}

func (d *Ducker) keep(app string) bool {
	for _, name := range d.Keep {
		if app == name {
			return true
		}
	}
	return false
}

func (d *Ducker) apply(ctx context.Context, fades []fade) error {
	if len(fades) == 0 {
		return nil
	}

	const step = 10 * time.Millisecond

	steps := max(int(d.Fade/step), 1)
	if d.Fade <= 0 {
		steps = 0
	}

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := 1.0
		if steps > 0 {
			frac = float64(i) / float64(steps)
		}

		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if _, err := d.Pactl(ctx, "set-sink-input-volume", strconv.Itoa(f.id), fmt.Sprintf("%d%%", clamp(v))); err != nil {
				return fmt.Errorf("set volume id=%d: %w", f.id, err)
			}
		}

		if i < steps {
			time.Sleep(d.Fade / time.Duration(steps))
		}
	}
	return nil
}

func clamp(v int) int {
	return min(max(v, 0), maxVolume)
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	if len(blocks) <= 1 {
		return nil
	}

	var res []sinkInput
	for _, block := range blocks[1:] {
		head, body, found := strings.Cut(block, "\n")
		if !found {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			switch {
			case strings.HasPrefix(line, "Volume:") && in.Volume == 0:
				if m := percentRe.FindStringSubmatch(line); m != nil {
					in.Volume, _ = strconv.Atoi(m[1])
				}
			case strings.HasPrefix(line, "application.name =") && in.AppName == "":
				_, rest, _ := strings.Cut(line, "\"")
				in.AppName, _, _ = strings.Cut(rest, "\"")
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}
	return res
}
