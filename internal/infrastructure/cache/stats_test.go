package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVersionSource struct {
	fingerprint string
	err         error
	calls       []string
}

func (s *stubVersionSource) Fingerprint(_ context.Context, resource, scope string) (string, error) {
	s.calls = append(s.calls, resource+"/"+scope)
	return s.fingerprint, s.err
}

// failingStore errors on every operation, exercising the cache-backend
// failure path of Remember.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("backend down") }
func (failingStore) Close() error                         { return nil }

func TestVersionKey(t *testing.T) {
	ctx := context.Background()

	t.Run("branch scope embeds the branch and fingerprint", func(t *testing.T) {
		versions := &stubVersionSource{fingerprint: "1700000000-42"}
		c := NewStatsCache(NewInMemoryStore(), versions, time.Minute)

		branchID := uuid.New()
		key, err := c.VersionKey(ctx, "contracts", tenant.NewContext(uuid.New(), branchID))
		require.NoError(t, err)
		assert.Equal(t, "contracts:"+branchID.String()+":1700000000-42", key)
		assert.Equal(t, []string{"contracts/" + branchID.String()}, versions.calls)
	})

	t.Run("super admin uses the global scope", func(t *testing.T) {
		versions := &stubVersionSource{fingerprint: "9-9"}
		c := NewStatsCache(NewInMemoryStore(), versions, time.Minute)

		key, err := c.VersionKey(ctx, "orders", tenant.NewSuperAdminContext(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, "orders:global:9-9", key)
	})

	t.Run("super admin with a branch claim still uses the global scope", func(t *testing.T) {
		versions := &stubVersionSource{fingerprint: "1-1"}
		c := NewStatsCache(NewInMemoryStore(), versions, time.Minute)

		branchID := uuid.New()
		admin := tenant.Context{UserID: uuid.New(), BranchID: &branchID, SuperAdmin: true}

		adminKey, err := c.VersionKey(ctx, "contracts", admin)
		require.NoError(t, err)
		assert.Equal(t, "contracts:global:1-1", adminKey)
		assert.Equal(t, []string{"contracts/global"}, versions.calls)

		// A branch user of the same branch must never read the admin's entry
		branchKey, err := c.VersionKey(ctx, "contracts", tenant.NewContext(uuid.New(), branchID))
		require.NoError(t, err)
		assert.NotEqual(t, adminKey, branchKey)
	})

	t.Run("principal without scope fails", func(t *testing.T) {
		c := NewStatsCache(NewInMemoryStore(), &stubVersionSource{}, time.Minute)

		_, err := c.VersionKey(ctx, "orders", tenant.Context{UserID: uuid.New()})
		assert.Error(t, err)
	})

	t.Run("version source failure propagates", func(t *testing.T) {
		versions := &stubVersionSource{err: errors.New("db gone")}
		c := NewStatsCache(NewInMemoryStore(), versions, time.Minute)

		_, err := c.VersionKey(ctx, "orders", tenant.NewSuperAdminContext(uuid.New()))
		assert.Error(t, err)
	})
}

func TestRemember(t *testing.T) {
	ctx := context.Background()

	type payload struct {
		Total int `json:"total"`
	}

	t.Run("computes once and serves from cache", func(t *testing.T) {
		c := NewStatsCache(NewInMemoryStore(), &stubVersionSource{}, time.Minute)
		var computes atomic.Int32

		compute := func(context.Context) (payload, error) {
			computes.Add(1)
			return payload{Total: 7}, nil
		}

		first, err := Remember(ctx, c, "contracts:global:1-1", 0, compute)
		require.NoError(t, err)
		second, err := Remember(ctx, c, "contracts:global:1-1", 0, compute)
		require.NoError(t, err)

		assert.Equal(t, payload{Total: 7}, first)
		assert.Equal(t, payload{Total: 7}, second)
		assert.Equal(t, int32(1), computes.Load())
	})

	t.Run("different version keys recompute", func(t *testing.T) {
		c := NewStatsCache(NewInMemoryStore(), &stubVersionSource{}, time.Minute)
		var computes atomic.Int32

		compute := func(context.Context) (payload, error) {
			computes.Add(1)
			return payload{Total: int(computes.Load())}, nil
		}

		_, err := Remember(ctx, c, "contracts:global:1-1", 0, compute)
		require.NoError(t, err)
		_, err = Remember(ctx, c, "contracts:global:2-2", 0, compute)
		require.NoError(t, err)

		assert.Equal(t, int32(2), computes.Load())
	})

	t.Run("compute failure propagates and is not cached", func(t *testing.T) {
		c := NewStatsCache(NewInMemoryStore(), &stubVersionSource{}, time.Minute)

		_, err := Remember(ctx, c, "k", 0, func(context.Context) (payload, error) {
			return payload{}, errors.New("query failed")
		})
		assert.Error(t, err)

		value, err := Remember(ctx, c, "k", 0, func(context.Context) (payload, error) {
			return payload{Total: 3}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, payload{Total: 3}, value)
	})

	t.Run("failing backend still computes", func(t *testing.T) {
		c := NewStatsCache(failingStore{}, &stubVersionSource{}, time.Minute)

		value, err := Remember(ctx, c, "k", 0, func(context.Context) (payload, error) {
			return payload{Total: 5}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, payload{Total: 5}, value)
	})
}

func TestNewStatsCacheDefaultTTL(t *testing.T) {
	c := NewStatsCache(NewInMemoryStore(), &stubVersionSource{}, 0)
	assert.Equal(t, 5*time.Minute, c.DefaultTTL())
}
