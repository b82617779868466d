package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Quota counts chatbot messages per user per UTC day in Redis. The
// counter degrades open: with no Redis client, or on a Redis error, the
// message is allowed, matching how the rate limiter behaves when the
// cache is down.
type Quota struct {
	RDB    *redis.Client
	PerDay int
}

func NewQuota(rdb *redis.Client, perDay int) *Quota {
	return &Quota{RDB: rdb, PerDay: perDay}
}

// Allow consumes one message from the user's daily budget. It returns
// the remaining budget and whether the message may proceed.
func (q *Quota) Allow(ctx context.Context, userID uint64) (int, bool) {
	if q.RDB == nil || q.PerDay <= 0 {
		return q.PerDay, true
	}
	key := fmt.Sprintf("chat:quota:%d:%s", userID, time.Now().UTC().Format("2006-01-02"))
	n, err := q.RDB.Incr(ctx, key).Result()
	if err != nil {
		return q.PerDay, true
	}
	if n == 1 {
		// First message of the day; the key outlives the day slightly so
		// a clock skew between app and Redis cannot cut the budget short.
		q.RDB.Expire(ctx, key, 25*time.Hour)
	}
	remaining := q.PerDay - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, int(n) <= q.PerDay
}
