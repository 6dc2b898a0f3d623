package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/task-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient parses a redis:// or rediss:// URL, opens a client and verifies
// connectivity with PING. The caller owns the returned client and must close it.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to ping redis: %v", store.ErrUnavailable, err)
	}

	return client, nil
}
