package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrBlobNotFound = errors.New("cart blob not found")

const defaultTTL = 30 * 24 * time.Hour

func NewRedisBlobs(client *redis.Client) *RedisBlobs {
	return &RedisBlobs{client: client, ttl: defaultTTL}
}

type RedisBlobs struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisBlobs) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, blobKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisBlobs) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, blobKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBlobs) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func blobKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}
