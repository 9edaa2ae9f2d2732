package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const runLockPrefix = "idp:run-lock:"

// RunLockRepository guards a batch job against overlapping invocations using Redis SET NX.
// A nil client makes every acquisition succeed.
type RunLockRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRunLockRepository constructs a run lock repository.
func NewRunLockRepository(client *redis.Client, logger *zap.Logger) *RunLockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunLockRepository{client: client, logger: logger}
}

// Acquire takes the named lock for owner until ttl expires. It returns false when someone else holds it.
func (r *RunLockRepository) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, runLockPrefix+name, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", name, err)
	}
	if !ok {
		holder, getErr := r.client.Get(ctx, runLockPrefix+name).Result()
		if getErr == nil {
			r.logger.Info("run lock held", zap.String("lock", name), zap.String("holder", holder))
		}
	}
	return ok, nil
}

// Release drops the lock if owner still holds it.
func (r *RunLockRepository) Release(ctx context.Context, name, owner string) error {
	if r.client == nil {
		return nil
	}
	key := runLockPrefix + name
	holder, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if holder != owner {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RunLockRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
