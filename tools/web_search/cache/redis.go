package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Redis stores search results as JSON values with a key TTL, letting Redis
// own expiry. Capacity bounding is left to Redis' own maxmemory policy.
type Redis struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedis connects to the given Redis instance. Errors talking to Redis at
// runtime degrade to cache misses; the search client then just refetches.
func NewRedis(addr, password string, db int) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{
		client: rdb,
		logger: log.New(os.Stderr, "[search-cache] ", log.LstdFlags),
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]models.Result, bool) {
	val, err := r.client.Get(ctx, "search:"+key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Printf("redis get: %v", err)
		}
		return nil, false
	}
	var results []models.Result
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		r.logger.Printf("redis decode for key %s: %v", key, err)
		return nil, false
	}
	return results, true
}

func (r *Redis) Set(ctx context.Context, key string, results []models.Result, ttl time.Duration) {
	raw, err := json.Marshal(results)
	if err != nil {
		r.logger.Printf("redis encode for key %s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, "search:"+key, raw, ttl).Err(); err != nil {
		r.logger.Printf("redis set: %v", err)
	}
}
