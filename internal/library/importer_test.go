package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestImporter_Import(t *testing.T) {
	dir := t.TempDir()
	first := writeExport(t, dir, "a.jsonl.gz",
		`{"isbn": "9780441013593", "title": "Neuromancer", "author": "William Gibson", "year": 1984}`,
		`{"isbn": "9780262033848", "title": "CLRS", "author": "Cormen"}`,
		``,
		`{"title": "Snow Crash", "author": "Neal Stephenson"}`,
		`this is not json`,
	)
	second := writeExport(t, dir, "b.jsonl.gz",
		`{"isbn": "9780441013593", "title": "Neuromancer (reprint)", "author": "William Gibson"}`,
		`{"title": "snow crash", "author": "NEAL STEPHENSON"}`,
		`{"title": "", "author": "Anonymous"}`,
		`{"title": "Dune", "author": "Frank Herbert"}`,
	)

	books := testCatalog()
	got, stats, err := NewImporter(1000).Import(context.Background(), books, []string{first, second})
	require.NoError(t, err)

	assert.Equal(t, ImportStats{Read: 7, Added: 2, Duplicates: 4, Invalid: 2}, stats)
	require.Len(t, got, len(books)+2)
	assert.Equal(t, "Neuromancer", got[3].Title)
	assert.Equal(t, "Snow Crash", got[4].Title)
	assert.Len(t, books, 3, "input must not change")
}

func TestImporter_MissingFile(t *testing.T) {
	_, _, err := NewImporter(0).Import(context.Background(), nil, []string{filepath.Join(t.TempDir(), "missing.gz")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.gz")
}

func TestImporter_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jsonl.gz")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "Dune"}`), 0o600))

	_, _, err := NewImporter(0).Import(context.Background(), nil, []string{path})
	require.Error(t, err)
}

func TestImporter_Canceled(t *testing.T) {
	path := writeExport(t, t.TempDir(), "a.jsonl.gz", `{"title": "Dune"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewImporter(0).Import(ctx, nil, []string{path})
	require.ErrorIs(t, err, context.Canceled)
}
