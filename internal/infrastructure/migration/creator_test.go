package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/erp/pos/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice index", "add_invoice_index"},
		{"Add-Invoice-Index", "add_invoice_index"},
		{"ADD_INVOICE_INDEX", "add_invoice_index"},
		{"add__invoice__index", "add_invoice_index"},
		{"Add Payments 2", "add_payments_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mf, err := createMigrationAt(dir, "add invoice index", "Index invoices by status", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304050607", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_invoice_index.up.sql"), mf.UpPath)
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_invoice_index.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add invoice index")
	assert.Contains(t, string(up), "Index invoices by status")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	_, err = createMigrationAt(dir, "add invoice index", "again", now)
	assert.Error(t, err, "an existing pair is never overwritten")

	_, err = CreateMigration(dir, "!!!", "")
	assert.ErrorContains(t, err, "no usable characters")
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_payments.up.sql":   {Data: []byte("--")},
		"000002_add_payments.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":           {Data: []byte("--")},
		"000001_init.down.sql":         {Data: []byte("--")},
		"README.md":                    {Data: []byte("docs")},
		"subdir.up.sql/keep":           {Data: []byte("")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_add_payments"}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := migrations.FS.Open(name + ".down.sql")
		assert.NoError(t, err, "%s has no rollback", name)
	}
}
