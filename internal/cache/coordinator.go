// internal/cache/coordinator.go

// Package cache deduplicates concurrent score computations per product key,
// persists results write-through, and serves cached records on later
// lookups. Persistent-store outages degrade to a process-local store
// without failing the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
	"ecoscore/internal/models"
)

const redisKeyPrefix = "score:product:"

// ComputeFn produces the breakdown for one product key on a cache miss.
type ComputeFn func(ctx context.Context, productKey string) (models.ScoreBreakdown, error)

// Coordinator guarantees at most one concurrent computation per product
// key: late callers attach to the in-flight computation and receive its
// result instead of triggering a duplicate.
type Coordinator struct {
	store    ScoreStore
	fallback *MemoryScoreStore
	redis    *redis.Client // optional hot layer
	ttl      time.Duration
	flights  singleflight.Group
	logger   logger.Logger
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithRedis attaches the Redis hot layer in front of the persistent store.
func WithRedis(client *redis.Client, ttl time.Duration) Option {
	return func(c *Coordinator) {
		c.redis = client
		c.ttl = ttl
	}
}

func NewCoordinator(store ScoreStore, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		fallback: NewMemoryScoreStore(),
		ttl:      24 * time.Hour,
		logger:   log.With(map[string]interface{}{"component": "cache"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached breakdown for the key, or computes and
// persists it exactly once. Store unavailability never fails the caller.
func (c *Coordinator) GetOrCompute(ctx context.Context, productKey string, compute ComputeFn) (models.ScoreBreakdown, error) {
	if record, ok := c.lookup(ctx, productKey); ok {
		return record, nil
	}

	result, err, _ := c.flights.Do(productKey, func() (interface{}, error) {
		// Re-check under the flight: another caller may have just written.
		if record, ok := c.lookup(ctx, productKey); ok {
			return record, nil
		}

		// The computation is decoupled from the first caller's lifetime so
		// that waiters still receive a result if it abandons the request.
		computeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		record, err := compute(computeCtx, productKey)
		if err != nil {
			return nil, err
		}

		c.persist(computeCtx, record)
		return record, nil
	})
	if err != nil {
		return models.ScoreBreakdown{}, err
	}

	return result.(models.ScoreBreakdown), nil
}

// GetOrComputeBatch resolves many keys, preserving result ordering against
// input key ordering. Each key still honors single-flight semantics against
// any in-flight single-item request.
func (c *Coordinator) GetOrComputeBatch(ctx context.Context, productKeys []string, compute ComputeFn) ([]models.ScoreBreakdown, error) {
	results := make([]models.ScoreBreakdown, len(productKeys))
	for i, key := range productKeys {
		record, err := c.GetOrCompute(ctx, key, compute)
		if err != nil {
			return nil, err
		}
		results[i] = record
	}
	return results, nil
}

// Invalidate removes a key from every layer. It is the sole cache-bust.
func (c *Coordinator) Invalidate(ctx context.Context, productKey string) {
	c.flights.Forget(productKey)
	if c.redis != nil {
		if err := c.redis.Del(ctx, redisKeyPrefix+productKey).Err(); err != nil {
			c.logger.Warn("redis invalidate failed", map[string]interface{}{
				"productKey": productKey,
				"error":      err.Error(),
			})
		}
	}
	if err := c.store.Delete(ctx, productKey); err != nil {
		c.logger.Warn("persistent store invalidate failed", map[string]interface{}{
			"productKey": productKey,
			"error":      err.Error(),
		})
	}
	_ = c.fallback.Delete(ctx, productKey)
}

// lookup checks the Redis hot layer, then the persistent store, then the
// local fallback store.
func (c *Coordinator) lookup(ctx context.Context, productKey string) (models.ScoreBreakdown, bool) {
	if c.redis != nil {
		if val, err := c.redis.Get(ctx, redisKeyPrefix+productKey).Result(); err == nil {
			var record models.ScoreBreakdown
			if err := json.Unmarshal([]byte(val), &record); err == nil {
				metrics.CacheLookups.WithLabelValues("hit_redis").Inc()
				return record, true
			}
		}
	}

	record, err := c.store.Get(ctx, productKey)
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit_store").Inc()
		c.writeRedis(ctx, record)
		return record, true
	}
	if !errors.Is(err, ErrNotFound) {
		// Store outage: the local fallback may still hold the record.
		c.logger.Warn("persistent store lookup failed, using local fallback", map[string]interface{}{
			"productKey": productKey,
			"error":      err.Error(),
		})
		metrics.StoreFallbacks.WithLabelValues("score").Inc()
		if local, err := c.fallback.Get(ctx, productKey); err == nil {
			metrics.CacheLookups.WithLabelValues("hit_local").Inc()
			return local, true
		}
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return models.ScoreBreakdown{}, false
}

// persist writes through to the persistent store and the Redis layer; on
// store failure the record lands in the local fallback instead. Neither
// failure propagates to the caller.
func (c *Coordinator) persist(ctx context.Context, record models.ScoreBreakdown) {
	if err := c.store.Upsert(ctx, record); err != nil {
		c.logger.Warn("persistent store write failed, degrading to local store", map[string]interface{}{
			"productKey": record.ProductKey,
			"error":      err.Error(),
		})
		metrics.StoreFallbacks.WithLabelValues("score").Inc()
		_ = c.fallback.Upsert(ctx, record)
	}

	c.writeRedis(ctx, record)
}

func (c *Coordinator) writeRedis(ctx context.Context, record models.ScoreBreakdown) {
	if c.redis == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, redisKeyPrefix+record.ProductKey, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("redis write failed", map[string]interface{}{
			"productKey": record.ProductKey,
			"error":      err.Error(),
		})
	}
}
