package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupPrefix = "analytics:dedup:"

// Deduper marks a (handler, key) pair as taken for ttl using SET NX.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

func dedupKey(handler, key string) string {
	return dedupPrefix + handler + ":" + key
}

// AcquireOnce reports whether this is the first attempt for handler+key within ttl.
// Redis 不可用时放行：重复生成报告好过丢失请求
func (d *Deduper) AcquireOnce(ctx context.Context, handler, key string) bool {
	k := dedupKey(handler, key)
	ok, err := d.rdb.SetNX(ctx, k, time.Now().UTC().Unix(), d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("dedup_key", k),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		d.logger.Info("Skipped duplicated event", zap.String("dedup_key", k))
	}
	return ok
}

// Release 删除去重标记，失败后重新投递的消息可以再次处理
func (d *Deduper) Release(ctx context.Context, handler, key string) {
	k := dedupKey(handler, key)
	if err := d.rdb.Del(ctx, k).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key", zap.String("dedup_key", k), zap.Error(err))
	}
}
