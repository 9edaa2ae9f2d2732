package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "idp_batch", cfg.Metrics.JobName)
	assert.Equal(t, ReportFormatCSV, cfg.Report.Format)
	assert.False(t, cfg.Run.LockEnabled)
	assert.Equal(t, 2*time.Hour, cfg.Run.LockTTL)
	assert.Empty(t, cfg.Run.SubjectIDs)

	loc, err := cfg.Run.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRunOverrides(t *testing.T) {
	t.Setenv("RUN_SUBJECT_IDS", "1860, 42 ,")
	t.Setenv("RUN_LOCK_ENABLED", "true")
	t.Setenv("RUN_LOCK_TTL", "not-a-duration")
	t.Setenv("REPORT_FORMAT", "PDF")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{1860, 42}, cfg.Run.SubjectIDs)
	assert.True(t, cfg.Run.LockEnabled)
	assert.Equal(t, 2*time.Hour, cfg.Run.LockTTL)
	assert.Equal(t, ReportFormatPDF, cfg.Report.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("subject ids", func(t *testing.T) {
		t.Setenv("RUN_SUBJECT_IDS", "1860,abc")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RUN_SUBJECT_IDS")
	})

	t.Run("report format", func(t *testing.T) {
		t.Setenv("REPORT_FORMAT", "xlsx")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("RUN_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		require.Error(t, err)
	})
}
