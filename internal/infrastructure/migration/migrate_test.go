package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"000001_create_receipts.up.sql",
		"000001_create_receipts.down.sql",
		"000002_create_payments.up.sql",
		"000002_create_payments.down.sql",
		"README.md",
	}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
	}

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_receipts", "000002_create_payments"}, names)
}

func TestListMissingDirectory(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
