package domains

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ranking = `"Rank","Domain","Open Page Rank"
"3","github.com","9.1"
"1","google.com","10.0"
"2","youtube.com","10.0"
"x","broken.com","1"
"4","gitlab.com","8.0"
`

func TestReadSortsAndTruncates(t *testing.T) {
	list, err := Read(strings.NewReader(ranking), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"google.com", "youtube.com", "github.com"}, list)

	all, err := Read(strings.NewReader(ranking), 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestReadRequiresColumns(t *testing.T) {
	_, err := Read(strings.NewReader("Domain\ngoogle.com\n"), 10)
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	list := []string{"google.com", "youtube.com", "github.com", "gitlab.com"}

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"open youtube", "youtube.com", true},
		{"open GitHub.com", "github.com", true},
		{"git", "github.com", true},
		{"open ", "", false},
		{"open wikipedia", "", false},
	}
	for _, tt := range tests {
		got, ok := Match(tt.query, list)
		assert.Equal(t, tt.ok, ok, tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestTableCachesLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.csv")
	require.NoError(t, os.WriteFile(path, []byte(ranking), 0o644))

	table := NewTable(path, 10, time.Minute)
	d, err := table.Lookup("open youtube")
	require.NoError(t, err)
	assert.Equal(t, "youtube.com", d)

	require.NoError(t, os.Remove(path))

	d, err = table.Lookup("gitlab")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.com", d)

	d, err = table.Lookup("wikipedia")
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestTableMissingFile(t *testing.T) {
	table := NewTable(filepath.Join(t.TempDir(), "none.csv"), 10, time.Minute)
	_, err := table.Lookup("youtube")
	assert.Error(t, err)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://github.com", URL("github.com"))
}
