package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper provides once-only guards backed by Redis SetNX. The checklist
// initializer uses it so a project's checklist is generated at most once even
// when two clients race on first load.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{
		rdb: rdb,
		ttl: ttl,
	}
}

// NewDeduperWithLogger creates a deduper with logger support
func NewDeduperWithLogger(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a once-guard for a given operation + entity ID.
// Returns true if this is the FIRST time, false on a duplicate. When Redis is
// unavailable the guard does not block processing and returns true.
func (d *Deduper) AcquireOnce(ctx context.Context, operation string, entityID int) bool {
	key := fmt.Sprintf("once:%s:%d", operation, entityID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis once-guard check failed, allowing processing",
				zap.String("operation", operation),
				zap.Int("entity_id", entityID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated operation",
			zap.String("operation", operation),
			zap.Int("entity_id", entityID),
			zap.String("guard_key", key),
		)
	}

	return ok
}

// Release drops the guard so the operation may run again (used when the guarded
// operation itself failed and should be retryable).
func (d *Deduper) Release(ctx context.Context, operation string, entityID int) {
	key := fmt.Sprintf("once:%s:%d", operation, entityID)
	if err := d.rdb.Del(ctx, key).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Failed to release once-guard",
			zap.String("guard_key", key),
			zap.Error(err),
		)
	}
}
