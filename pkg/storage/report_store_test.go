package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStoreSaveAndPrune(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2026, time.October, 19, 6, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	recent, err := store.Save("2026/10/idp-run-b.csv", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "2026", "10", "idp-run-b.csv"), recent)
	require.NoError(t, os.Chtimes(recent, now.Add(-time.Hour), now.Add(-time.Hour)))

	old, err := store.Save("idp-run-a.pdf", []byte("a"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(old, now.Add(-48*time.Hour), now.Add(-48*time.Hour)))

	removed, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"idp-run-a.pdf"}, removed)

	_, err = os.Stat(recent)
	assert.NoError(t, err)
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}

func TestReportStoreRejectsEscapingNames(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../outside.csv", "/etc/report.csv", "."} {
		_, err := store.Save(name, []byte("x"))
		assert.Error(t, err, name)
	}
}
