package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards at-least-once message handlers with a Redis SETNX key.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDeduper creates a deduper; logger may be nil.
func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce returns true the first time handler sees id within the TTL.
// When Redis is unreachable it returns true so processing is not blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, id int) bool {
	key := FormatDedupKey(handler, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.Int("id", id),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.Int("id", id),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Release drops the dedup key so a failed message can be handled again.
func (d *Deduper) Release(ctx context.Context, handler string, id int) error {
	return d.rdb.Del(ctx, FormatDedupKey(handler, id)).Err()
}

// FormatDedupKey formats the dedup key for handler and id.
func FormatDedupKey(handler string, id int) string {
	return fmt.Sprintf("dedup:%s:%d", handler, id)
}
