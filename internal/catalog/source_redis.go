package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tile-intent-workers/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// ErrNotPublished is returned when the redis key holds no snapshot.
var ErrNotPublished = errors.New("catalog snapshot not published")

// RedisSource reads a snapshot document published under a single key.
type RedisSource struct {
	client *database.RedisClient
	key    string
}

func NewRedisSource(client *database.RedisClient, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (r *RedisSource) Name() string { return "redis" }

func (r *RedisSource) Load(ctx context.Context) (*Data, error) {
	raw, err := r.client.Client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: key %s", ErrNotPublished, r.key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return DecodeJSON(raw)
}

// Publish writes d under the source key so other workers can load it without
// touching the primary store.
func (r *RedisSource) Publish(ctx context.Context, d *Data, ttl time.Duration) error {
	if err := Validate(d); err != nil {
		return err
	}
	return r.client.SetJSON(ctx, r.key, d, ttl)
}
