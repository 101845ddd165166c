package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{"Filename", "FullPath", "Extension", "ModifiedTime"}

type Entry struct {
	Name      string
	Path      string
	Extension string
	Modified  string
}

// Indexer walks directories and writes a flat file index.
type Indexer struct {
	Extensions []string
	// SkipDirs holds glob patterns matched against directory names.
	SkipDirs []string
}

func (ix *Indexer) allowed(ext string) bool {
	for _, e := range ix.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func (ix *Indexer) skipped(name string) bool {
	for _, pattern := range ix.SkipDirs {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Collect walks every directory in order. Missing or unreadable entries are
// skipped.
func (ix *Indexer) Collect(dirs []string) []Entry {
	var out []Entry

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != dir {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != dir && ix.skipped(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			ext := strings.ToLower(filepath.Ext(d.Name()))
			if !ix.allowed(ext) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}

			out = append(out, Entry{
				Name:      d.Name(),
				Path:      path,
				Extension: ext,
				Modified:  info.ModTime().Format(timeLayout),
			})
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Walk failed", "dir", dir, "err", err)
		}
	}

	return out
}

// Scan collects dirs and overwrites out with the index. It returns the
// number of indexed files.
func (ix *Indexer) Scan(dirs []string, out string) (int, error) {
	entries := ix.Collect(dirs)
	if err := Write(out, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func Write(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(header)
	for _, e := range entries {
		_ = w.Write([]string{e.Name, e.Path, e.Extension, e.Modified})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	return f.Close()
}
