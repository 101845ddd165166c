package apps

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"jarvis/pkg/fuzzy"
	"jarvis/pkg/util"
)

var ErrCatalogMissing = errors.New("application catalog not found")

var header = []string{"AppName", "ExecutablePath", "ShortcutPath", "AppUserModelID"}

// Record describes how to launch one known application.
type Record struct {
	Name           string
	ExecutablePath string
	ShortcutPath   string
	LaunchID       string
}

func (r Record) Usable() bool {
	return r.ExecutablePath != "" || r.ShortcutPath != "" || r.LaunchID != ""
}

// Path is the direct launch target, executable first.
func (r Record) Path() string {
	if r.ExecutablePath != "" {
		return r.ExecutablePath
	}
	return r.ShortcutPath
}

// Load reads a catalog file. Names are lower-cased; row order is kept.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(head))
	for i, h := range head {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["AppName"]; !ok {
		return nil, errors.New("catalog header has no AppName column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		out = append(out, Record{
			Name:           strings.ToLower(field(row, "AppName")),
			ExecutablePath: field(row, "ExecutablePath"),
			ShortcutPath:   field(row, "ShortcutPath"),
			LaunchID:       field(row, "AppUserModelID"),
		})
	}

	return out, nil
}

// Save writes records with the catalog header, replacing path.
func Save(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	_ = w.Write(header)
	for _, r := range records {
		_ = w.Write([]string{r.Name, r.ExecutablePath, r.ShortcutPath, r.LaunchID})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	return f.Close()
}

// Catalog is a read-only snapshot of the application catalog. Reload swaps
// the whole snapshot.
type Catalog struct {
	path    string
	records atomic.Pointer[[]Record]
}

func NewCatalog(records []Record) *Catalog {
	c := &Catalog{}
	c.Replace(records)
	return c
}

// Open loads path into a catalog. A missing file yields an empty catalog
// together with ErrCatalogMissing so callers can warn and carry on.
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	records, err := Load(path)
	c.Replace(records)
	return c, err
}

func (c *Catalog) Path() string { return c.path }

func (c *Catalog) Replace(records []Record) {
	snapshot := append([]Record(nil), records...)
	c.records.Store(&snapshot)
}

// Reload re-reads the backing file and reports whether the records changed.
func (c *Catalog) Reload() (bool, error) {
	records, err := Load(c.path)
	if err != nil {
		return false, err
	}
	same := util.EqualSlices(c.Records(), records, func(a, b Record) bool { return a == b }, false)
	c.Replace(records)
	return !same, nil
}

func (c *Catalog) Records() []Record {
	if p := c.records.Load(); p != nil {
		return *p
	}
	return nil
}

func (c *Catalog) Len() int { return len(c.Records()) }

// Find resolves name against the catalog: containment over record names
// first, then the approximate pass over the full name list.
func (c *Catalog) Find(name string) (Record, fuzzy.Kind, bool) {
	records := c.Records()
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}

	if i := fuzzy.ContainsIndex(name, names); i >= 0 {
		return records[i], fuzzy.Contains, true
	}

	m, ok := fuzzy.Closest(name, names)
	if !ok {
		return Record{}, fuzzy.None, false
	}
	for _, r := range records {
		if r.Name == m.Value {
			return r, fuzzy.Fuzzy, true
		}
	}
	return Record{}, fuzzy.None, false
}

// FindLaunchTarget returns the direct path and the launch id for name.
// Both are empty when nothing matches.
func (c *Catalog) FindLaunchTarget(name string) (path, launchID string) {
	r, _, ok := c.Find(name)
	if !ok {
		return "", ""
	}
	return r.Path(), r.LaunchID
}
