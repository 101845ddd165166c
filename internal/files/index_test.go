package files

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allow = []string{".txt", ".pdf", ".docx", ".xlsx", ".jpg", ".png", ".mp4", ".mp3"}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func readIndex(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestScanCountsAllowedExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "photo.JPG"))
	touch(t, filepath.Join(dir, "song.mp3"))
	touch(t, filepath.Join(dir, "main.go"))
	touch(t, filepath.Join(dir, "archive.zip"))

	out := filepath.Join(t.TempDir(), "file_index.csv")
	ix := &Indexer{Extensions: allow}

	n, err := ix.Scan([]string{dir}, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := readIndex(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Filename", "FullPath", "Extension", "ModifiedTime"}, rows[0])

	exts := map[string]bool{}
	for _, r := range rows[1:] {
		exts[r[2]] = true
		assert.Len(t, r[3], len(timeLayout))
	}
	assert.Equal(t, map[string]bool{".txt": true, ".jpg": true, ".mp3": true}, exts)
}

func TestScanSkipsMissingDirsAndSkipList(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, ".git", "b.pdf"))
	touch(t, filepath.Join(dir, "node_modules", "pkg", "c.pdf"))

	ix := &Indexer{Extensions: allow, SkipDirs: []string{".git", "node_*"}}
	entries := ix.Collect([]string{filepath.Join(dir, "absent"), dir})

	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].Name)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), entries[0].Path)
}

func TestScanOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "index.csv")
	ix := &Indexer{Extensions: allow}

	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "b.txt"))
	_, err := ix.Scan([]string{dir}, out)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))
	n, err := ix.Scan([]string{dir}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, readIndex(t, out), 2)
}

func TestScanUnwritableOutput(t *testing.T) {
	ix := &Indexer{Extensions: allow}
	_, err := ix.Scan(nil, filepath.Join(t.TempDir(), "missing", "index.csv"))
	assert.Error(t, err)
}
