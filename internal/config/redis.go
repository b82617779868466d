package config

// Redis backs the chatbot daily quota counters and API rate limiting.
// Both features degrade gracefully when no Redis server is reachable, so
// the constructor returns nil instead of an error on connection failure
// and callers are expected to handle a nil client.

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from REDIS_ADDR (host:port,
// default localhost:6379), REDIS_PASSWORD and REDIS_DB. Returns nil when
// the server cannot be pinged within two seconds.
func NewRedisClient() *redis.Client {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	dbNum := 0
	if n, err := strconv.Atoi(envStr("REDIS_DB", "0")); err == nil {
		dbNum = n
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
