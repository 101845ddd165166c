package apps

import (
	"errors"
	"fmt"
	log "log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/v4/process"
)

// Launcher starts catalog targets.
type Launcher struct {
	// OpenPath opens a file, folder or shortcut with its default handler.
	OpenPath func(path string) error
	// Start runs a detached command.
	Start func(name string, args ...string) error
}

func NewLauncher() *Launcher {
	return &Launcher{
		OpenPath: browser.OpenFile,
		Start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Launch prefers the launch id over the direct path.
func (l *Launcher) Launch(path, launchID string) error {
	switch {
	case launchID != "":
		name, args := launchCommand(launchID)
		log.Debug("Launching by id", "id", launchID, "cmd", name)
		if err := l.Start(name, args...); err != nil {
			return fmt.Errorf("launch %s: %w", launchID, err)
		}
		return nil

	case path != "":
		log.Debug("Launching by path", "path", path)
		if err := l.OpenPath(path); err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		return nil
	}

	return errors.New("nothing to launch")
}

func launchCommand(id string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "explorer.exe", []string{`shell:AppsFolder\` + id}
	}
	return "gtk-launch", []string{id}
}

// Process is the part of a running process the closer needs.
type Process interface {
	Name() (string, error)
	Terminate() error
}

type osProcess struct{ *process.Process }

// Closer terminates running processes by name.
type Closer struct {
	List func() ([]Process, error)
}

func NewCloser() *Closer {
	return &Closer{List: listProcesses}
}

func listProcesses() ([]Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, osProcess{p})
	}
	return out, nil
}

// Close terminates every process whose name contains name, ignoring case.
// It returns how many processes matched.
func (c *Closer) Close(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, nil
	}

	procs, err := c.List()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	matched := 0
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			// gone or not ours
			continue
		}
		if !strings.Contains(strings.ToLower(pname), name) {
			continue
		}

		matched++
		log.Debug("Terminating process", "name", pname)
		if err := p.Terminate(); err != nil {
			log.Warn("Failed to terminate", "name", pname, "err", err)
		}
	}

	return matched, nil
}
