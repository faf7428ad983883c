package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// TaskLister loads a project's ordered task list from the database.
type TaskLister interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.Task, error)
}

// CollectionCache is a read-through redis cache of ordered project task lists.
// A nil redis client disables caching.
type CollectionCache struct {
	base  TaskLister
	redis *redis.Client
	ttl   time.Duration
}

func NewCollectionCache(base TaskLister, client *redis.Client, ttl time.Duration) *CollectionCache {
	if base == nil {
		panic("cache.NewCollectionCache: base lister is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CollectionCache{base: base, redis: client, ttl: ttl}
}

func (c *CollectionCache) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	if tasks, ok := c.load(ctx, projectID); ok {
		return tasks, nil
	}

	tasks, err := c.base.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, projectID, tasks)
	return tasks, nil
}

// Evict drops the cached list of a project after a mutation.
func (c *CollectionCache) Evict(ctx context.Context, projectID int64) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, collectionKey(projectID)).Err(); err != nil {
		zap.L().Warn("evict project tasks", zap.Int64("project_id", projectID), zap.Error(err))
	}
}

func (c *CollectionCache) load(ctx context.Context, projectID int64) ([]model.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, collectionKey(projectID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the database without failing.
			_ = c.redis.Del(ctx, collectionKey(projectID)).Err()
		}
		return nil, false
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, collectionKey(projectID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *CollectionCache) store(ctx context.Context, projectID int64, tasks []model.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, collectionKey(projectID), data, c.ttl).Err()
}

func collectionKey(projectID int64) string {
	return "project-tasks:" + strconv.FormatInt(projectID, 10)
}
