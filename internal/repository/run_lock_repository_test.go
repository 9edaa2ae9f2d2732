package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLockRepositoryWithoutClient(t *testing.T) {
	repo := NewRunLockRepository(nil, nil)
	ctx := context.Background()

	ok, err := repo.Acquire(ctx, "idp_batch", "run-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Acquire(ctx, "idp_batch", "run-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, repo.Release(ctx, "idp_batch", "run-1"))
	assert.NoError(t, repo.Close())
}
