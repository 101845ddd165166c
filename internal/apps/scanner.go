package apps

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner builds the application catalog from the local system.
type Scanner struct {
	ShortcutDirs []string
	ProgramDirs  []string
	DesktopDirs  []string

	// Packaged lists store-packaged apps; may be nil.
	Packaged func(ctx context.Context) ([]Record, error)
}

func DefaultScanner() *Scanner {
	if runtime.GOOS == "windows" {
		programFiles := os.Getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		programFilesX86 := os.Getenv("ProgramFiles(x86)")
		if programFilesX86 == "" {
			programFilesX86 = `C:\Program Files (x86)`
		}
		return &Scanner{
			ShortcutDirs: []string{
				filepath.Join(os.Getenv("PROGRAMDATA"), `Microsoft\Windows\Start Menu\Programs`),
				filepath.Join(os.Getenv("APPDATA"), `Microsoft\Windows\Start Menu\Programs`),
			},
			ProgramDirs: []string{programFiles, programFilesX86},
			Packaged:    startApps,
		}
	}

	home, _ := os.UserHomeDir()
	return &Scanner{
		DesktopDirs: []string{
			"/usr/share/applications",
			"/usr/local/share/applications",
			"/var/lib/flatpak/exports/share/applications",
			filepath.Join(home, ".local/share/applications"),
		},
	}
}

// Scan collects every source, keeps the first record per name and sorts by
// name so repeated scans of an unchanged system produce the same file.
func (s *Scanner) Scan(ctx context.Context) ([]Record, error) {
	var all []Record

	log.Debug("Scanning shortcuts")
	all = append(all, globRecords(s.ShortcutDirs, "**/*.{lnk,LNK}", func(name, path string) Record {
		return Record{Name: name, ShortcutPath: path}
	})...)

	log.Debug("Scanning program dirs")
	all = append(all, globRecords(s.ProgramDirs, "**/*.{exe,EXE}", func(name, path string) Record {
		return Record{Name: name, ExecutablePath: path}
	})...)

	log.Debug("Scanning desktop entries")
	all = append(all, desktopEntries(s.DesktopDirs)...)

	if s.Packaged != nil {
		packaged, err := s.Packaged(ctx)
		if err != nil {
			log.Error("Failed to list packaged apps", "err", err)
		}
		all = append(all, packaged...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Dedupe(all), nil
}

// Dedupe keeps the first record for each name, ignoring case, and orders
// the result by lower-cased name.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(r.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func globRecords(dirs []string, pattern string, mk func(name, path string) Record) []Record {
	var out []Record
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(dir), pattern)
		if err != nil {
			log.Warn("Glob failed", "dir", dir, "err", err)
			continue
		}

		for _, m := range matches {
			base := filepath.Base(m)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			out = append(out, mk(name, filepath.Join(dir, filepath.FromSlash(m))))
		}
	}
	return out
}

func desktopEntries(dirs []string) []Record {
	var out []Record
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(dir), "**/*.desktop")
		if err != nil {
			log.Warn("Glob failed", "dir", dir, "err", err)
			continue
		}

		for _, m := range matches {
			path := filepath.Join(dir, filepath.FromSlash(m))
			name, ok := readDesktopName(path)
			if !ok {
				continue
			}
			id := strings.TrimSuffix(strings.ReplaceAll(m, "/", "-"), ".desktop")
			out = append(out, Record{Name: name, ShortcutPath: path, LaunchID: id})
		}
	}
	return out
}

// readDesktopName returns the Name key of the [Desktop Entry] group,
// skipping hidden entries.
func readDesktopName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	var (
		name    string
		inEntry bool
	)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if name == "" {
				name = strings.TrimSpace(value)
			}
		case "NoDisplay", "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				return "", false
			}
		}
	}

	return name, name != ""
}

type startApp struct {
	Name  string `json:"Name"`
	AppID string `json:"AppID"`
}

func startApps(ctx context.Context) ([]Record, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-Command", "Get-StartApps | ConvertTo-Json")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("Get-StartApps: %w", err)
	}
	return parseStartApps(out)
}

// parseStartApps accepts both a single object and an array.
func parseStartApps(data []byte) ([]Record, error) {
	var list []startApp
	if err := json.Unmarshal(data, &list); err != nil {
		var one startApp
		if err2 := json.Unmarshal(data, &one); err2 != nil {
			return nil, fmt.Errorf("parse start apps: %w", err)
		}
		list = []startApp{one}
	}

	out := make([]Record, 0, len(list))
	for _, a := range list {
		if a.Name == "" || a.AppID == "" {
			continue
		}
		out = append(out, Record{Name: a.Name, LaunchID: a.AppID})
	}
	return out, nil
}
