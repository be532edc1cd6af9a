package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	plantKeyPrefix = "plant:"
	familyMapKey   = "families:map"

	// Detail snapshots expire on their own as a safety net; mutations
	// invalidate them eagerly.
	plantTTL = 24 * time.Hour
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	// Parse redis URL (redis://host:port or redis://host:port/db)
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

// GetPlant returns the cached detail snapshot for a plant id, if any.
func (c *RedisCache) GetPlant(ctx context.Context, id string) ([]byte, error) {
	return c.client.Get(ctx, plantKeyPrefix+id).Bytes()
}

func (c *RedisCache) SetPlant(ctx context.Context, id string, value []byte) error {
	return c.client.Set(ctx, plantKeyPrefix+id, value, plantTTL).Err()
}

func (c *RedisCache) DeletePlant(ctx context.Context, id string) error {
	return c.client.Del(ctx, plantKeyPrefix+id).Err()
}

// GetFamilyMap returns the cached name->id family map used when resolving
// contribution payloads.
func (c *RedisCache) GetFamilyMap(ctx context.Context) (map[string]string, error) {
	return c.client.HGetAll(ctx, familyMapKey).Result()
}

func (c *RedisCache) SetFamilyMap(ctx context.Context, families map[string]string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, familyMapKey)
	if len(families) > 0 {
		flat := make([]interface{}, 0, len(families)*2)
		for name, id := range families {
			flat = append(flat, name, id)
		}
		pipe.HSet(ctx, familyMapKey, flat...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateFamilyMap(ctx context.Context) error {
	return c.client.Del(ctx, familyMapKey).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
