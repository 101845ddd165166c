package domains

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type ranked struct {
	rank   int
	domain string
}

// Read parses a ranking table with at least Rank and Domain columns and
// returns the topN domains by ascending rank.
func Read(r io.Reader, topN int) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rankCol, domainCol := -1, -1
	for i, h := range head {
		switch strings.TrimSpace(h) {
		case "Rank":
			rankCol = i
		case "Domain":
			domainCol = i
		}
	}
	if rankCol < 0 || domainCol < 0 {
		return nil, errors.New("ranking needs Rank and Domain columns")
	}

	var rows []ranked
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if rankCol >= len(row) || domainCol >= len(row) {
			continue
		}

		rank, err := strconv.Atoi(strings.TrimSpace(row[rankCol]))
		if err != nil {
			continue
		}
		domain := strings.TrimSpace(row[domainCol])
		if domain == "" {
			continue
		}
		rows = append(rows, ranked{rank: rank, domain: domain})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].rank < rows[j].rank })

	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.domain
	}
	return out, nil
}

func Load(path string, topN int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, topN)
}

// Match returns the first domain, in rank order, equal to or containing
// the query with any "open " removed.
func Match(query string, domains []string) (string, bool) {
	q := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(query), "open ", ""))
	if q == "" {
		return "", false
	}

	for _, d := range domains {
		ld := strings.ToLower(d)
		if q == ld || strings.Contains(ld, q) {
			return d, true
		}
	}
	return "", false
}

func URL(domain string) string {
	return "https://" + domain
}

// Table loads the ranking lazily and keeps it cached.
type Table struct {
	path  string
	topN  int
	cache *cache.Cache
}

func NewTable(path string, topN int, ttl time.Duration) *Table {
	return &Table{
		path:  path,
		topN:  topN,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (t *Table) key() string {
	return t.path + "#" + strconv.Itoa(t.topN)
}

func (t *Table) Domains() ([]string, error) {
	if v, ok := t.cache.Get(t.key()); ok {
		return v.([]string), nil
	}

	list, err := Load(t.path, t.topN)
	if err != nil {
		return nil, fmt.Errorf("load domains %s: %w", t.path, err)
	}

	t.cache.SetDefault(t.key(), list)
	return list, nil
}

// Lookup matches query against the cached ranking. A table that cannot be
// loaded matches nothing.
func (t *Table) Lookup(query string) (string, error) {
	list, err := t.Domains()
	if err != nil {
		return "", err
	}
	d, ok := Match(query, list)
	if !ok {
		return "", nil
	}
	return d, nil
}
