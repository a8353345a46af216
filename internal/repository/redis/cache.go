// Package redis caches current-shift lookups in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mamadbah2/shiftdesk/internal/config"
	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

const (
	keyPrefix     = "shiftdesk:current_shift:"
	versionPrefix = "shiftdesk:current_shift_version:"

	// versionTTL must outlive any in-flight read-through.
	versionTTL = 24 * time.Hour
)

// noShift marks a cached "operator has no open shift" answer.
const noShift = "none"

// errStale aborts a read-through write that lost the race with a writer.
var errStale = errors.New("cache version moved")

// ShiftCache stores the current shift per operator with a TTL.
type ShiftCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewShiftCache connects to redis and verifies the connection.
func NewShiftCache(ctx context.Context, cfg config.RedisConfig) (*ShiftCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewShiftCacheWithClient(client, cfg.TTL), nil
}

// NewShiftCacheWithClient wraps an existing client.
func NewShiftCacheWithClient(client *goredis.Client, ttl time.Duration) *ShiftCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ShiftCache{client: client, ttl: ttl}
}

func key(operatorID string) string {
	return keyPrefix + operatorID
}

func versionKey(operatorID string) string {
	return versionPrefix + operatorID
}

// GetCurrent returns the cached answer. found is false on a cache miss; a
// hit may carry a nil shift.
func (c *ShiftCache) GetCurrent(ctx context.Context, operatorID string) (shift *models.Shift, found bool, err error) {
	data, err := c.client.Get(ctx, key(operatorID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get current shift: %w", err)
	}
	if string(data) == noShift {
		return nil, true, nil
	}

	var cached models.Shift
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("decode cached shift: %w", err)
	}
	return &cached, true, nil
}

// Version returns the operator's invalidation counter. Read it before
// loading the value later passed to SetCurrent.
func (c *ShiftCache) Version(ctx context.Context, operatorID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(operatorID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get cache version: %w", err)
	}
	return v, nil
}

// SetCurrent caches the operator's current shift, or its absence, unless an
// Invalidate ran since version was read. A skipped write is not an error.
func (c *ShiftCache) SetCurrent(ctx context.Context, operatorID string, shift *models.Shift, version int64) error {
	var value any = noShift
	if shift != nil {
		data, err := json.Marshal(shift)
		if err != nil {
			return fmt.Errorf("encode shift: %w", err)
		}
		value = data
	}

	err := c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, versionKey(operatorID)).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key(operatorID), value, c.ttl)
			return nil
		})
		return err
	}, versionKey(operatorID))

	switch {
	case err == nil, errors.Is(err, errStale), errors.Is(err, goredis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("redis set current shift: %w", err)
	}
}

// Invalidate drops the operator's cached entry and bumps its version so
// in-flight read-throughs do not write back what they loaded.
func (c *ShiftCache) Invalidate(ctx context.Context, operatorID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(operatorID))
		pipe.Expire(ctx, versionKey(operatorID), versionTTL)
		pipe.Del(ctx, key(operatorID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate current shift: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *ShiftCache) Close() error {
	return c.client.Close()
}
