package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bistro/internal/library"
)

func runCmd(t *testing.T, cfg *Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out, cfg)
	return out.String(), err
}

func TestRun_Lifecycle(t *testing.T) {
	cfg := &Config{Catalog: filepath.Join(t.TempDir(), "catalog.json"), ExpectedBooks: 100}

	out, err := runCmd(t, cfg, "list")
	require.NoError(t, err)
	assert.Equal(t, "No books.\n", out)

	_, err = runCmd(t, cfg, "add", "-title", "Dune", "-author", "Frank Herbert", "-year", "1965", "-isbn", "9780441013593")
	require.NoError(t, err)
	_, err = runCmd(t, cfg, "add", "-title", "Neuromancer", "-author", "William Gibson")
	require.NoError(t, err)

	_, err = runCmd(t, cfg, "add", "-title", "Dune Messiah", "-isbn", "9780441013593")
	assert.ErrorIs(t, err, library.ErrDuplicate)

	out, err = runCmd(t, cfg, "search", "gibson")
	require.NoError(t, err)
	assert.Equal(t, "1. Neuromancer by William Gibson\n", out)

	_, err = runCmd(t, cfg, "update", "-match", "neuromancer", "-title", "Neuromancer", "-author", "William Gibson", "-year", "1984")
	require.NoError(t, err)

	_, err = runCmd(t, cfg, "remove", "-title", "DUNE")
	require.NoError(t, err)

	out, err = runCmd(t, cfg, "list")
	require.NoError(t, err)
	assert.Equal(t, "1. Neuromancer by William Gibson (1984)\n", out)

	_, err = runCmd(t, cfg, "remove", "-title", "Dune")
	assert.ErrorIs(t, err, library.ErrBookNotFound)
}

func TestRun_Usage(t *testing.T) {
	cfg := &Config{Catalog: filepath.Join(t.TempDir(), "catalog.json")}

	_, err := runCmd(t, cfg)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, cfg, "borrow")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, cfg, "import")
	assert.Error(t, err)

	_, err = runCmd(t, cfg, "add", "-author", "Nobody")
	var verr *library.ValidationError
	assert.ErrorAs(t, err, &verr)
}
