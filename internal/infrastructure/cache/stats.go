package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// VersionSource produces a cheap, monotonically-changing fingerprint for a
// scoped resource, typically from the latest mutation timestamp and row count.
// Any write to the underlying table changes the fingerprint, so cached
// aggregates built on it expire without an explicit bust call.
type VersionSource interface {
	Fingerprint(ctx context.Context, resource string, branchID string) (string, error)
}

// StatsCache memoizes scope-aware aggregate computations. Cache keys embed
// the branch scope and a version token so two branches, or two data states,
// never collide or serve stale cross-branch data.
type StatsCache struct {
	store      Store
	versions   VersionSource
	defaultTTL time.Duration
}

// NewStatsCache creates a stats cache over a store and a version source
func NewStatsCache(store Store, versions VersionSource, defaultTTL time.Duration) *StatsCache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &StatsCache{
		store:      store,
		versions:   versions,
		defaultTTL: defaultTTL,
	}
}

// DefaultTTL returns the TTL used when callers pass zero
func (c *StatsCache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// VersionKey builds a cache key for a resource under the principal's branch
// scope, embedding the current version fingerprint. Super-admin aggregates
// use a distinct "global" scope segment even when the principal carries a
// branch claim, because their queries run unfiltered.
func (c *StatsCache) VersionKey(ctx context.Context, resource string, tctx tenant.Context) (string, error) {
	scope := "global"
	if !tctx.IsSuperAdmin() {
		branchID, ok := tctx.CurrentBranchID()
		if !ok {
			return "", fmt.Errorf("version key for %s: principal has no branch scope", resource)
		}
		scope = branchID.String()
	}

	fingerprint, err := c.versions.Fingerprint(ctx, resource, scope)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", resource, err)
	}
	return fmt.Sprintf("%s:%s:%s", resource, scope, fingerprint), nil
}

// Remember returns the cached value for key if present and unexpired;
// otherwise it computes, stores and returns it. Racing computes are
// acceptable - the value is idempotently recomputable and last write wins.
func Remember[T any](ctx context.Context, c *StatsCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		// A failing cache backend must not break the computation
		logger.L(ctx).Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		// Undecodable entry: fall through and recompute
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("encode cached value for %s: %w", key, err)
	}
	if err := c.store.Put(ctx, key, raw, ttl); err != nil {
		logger.L(ctx).Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
