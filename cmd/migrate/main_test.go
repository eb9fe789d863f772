package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	dir := t.TempDir()

	v, err := nextVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for _, name := range []string{
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"000002_add_status_fire_date.up.sql",
		"000002_add_status_fire_date.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	v, err = nextVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestNextVersion_MissingDir(t *testing.T) {
	_, err := nextVersion(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
