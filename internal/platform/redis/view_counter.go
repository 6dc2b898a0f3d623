package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is prepended to the task id to form a counter key.
const DefaultKeyPrefix = "task:view:count:"

// ViewCounter implements store.ViewCounter on Redis.
type ViewCounter struct {
	client goredis.Cmdable
	prefix string
	logger *slog.Logger
}

// Ensure ViewCounter implements store.ViewCounter interface
var _ store.ViewCounter = (*ViewCounter)(nil)

// NewViewCounter creates a ViewCounter using client. An empty prefix selects
// DefaultKeyPrefix. If logger is nil, a default logger will be used.
func NewViewCounter(client goredis.Cmdable, prefix string, logger *slog.Logger) *ViewCounter {
	if client == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ViewCounter{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "view_counter")),
	}
}

// Key returns the Redis key holding the view count of task id.
func (c *ViewCounter) Key(id int64) string {
	return c.prefix + strconv.FormatInt(id, 10)
}

// Increment implements store.ViewCounter.Increment with INCR.
func (c *ViewCounter) Increment(ctx context.Context, id int64) (int64, error) {
	count, err := c.client.Incr(ctx, c.Key(id)).Result()
	if err != nil {
		c.logError(ctx, "failed to increment view count", id, err)
		return 0, c.wrap("increment", err)
	}
	return count, nil
}

// Get implements store.ViewCounter.Get. A missing key counts as zero.
func (c *ViewCounter) Get(ctx context.Context, id int64) (int64, error) {
	count, err := c.client.Get(ctx, c.Key(id)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		c.logError(ctx, "failed to read view count", id, err)
		return 0, c.wrap("get", err)
	}
	return count, nil
}

// GetMany implements store.ViewCounter.GetMany with a single MGET.
func (c *ViewCounter) GetMany(ctx context.Context, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.Key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to read view counts",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return nil, c.wrap("get_many", err)
	}

	for i, id := range ids {
		raw, ok := values[i].(string)
		if !ok {
			counts[id] = 0
			continue
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.logError(ctx, "malformed view count", id, err)
			return nil, store.NewStoreError("view_count", "get_many", "malformed counter value", err)
		}
		counts[id] = count
	}
	return counts, nil
}

// Delete implements store.ViewCounter.Delete. Deleting a missing key is a no-op.
func (c *ViewCounter) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.Key(id)).Err(); err != nil {
		c.logError(ctx, "failed to delete view count", id, err)
		return c.wrap("delete", err)
	}
	return nil
}

// wrap classifies a Redis failure. Error replies from the server and values
// that are not integers are reported as-is; anything else means Redis could
// not be reached.
func (c *ViewCounter) wrap(operation string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return store.NewStoreError("view_count", operation, "malformed counter value", err)
	}
	var replyErr goredis.Error
	if errors.As(err, &replyErr) {
		return store.NewStoreError("view_count", operation, "counter command rejected", err)
	}
	return store.NewStoreError("view_count", operation, "counter store unavailable",
		fmt.Errorf("%w: %v", store.ErrUnavailable, err))
}

func (c *ViewCounter) logError(ctx context.Context, msg string, id int64, err error) {
	logger.FromContextOrDefault(ctx, c.logger).Error(msg,
		slog.String("error", err.Error()),
		slog.Int64("task_id", id))
}
