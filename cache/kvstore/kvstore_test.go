package kvstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
)

type callOutcome struct {
	Output   []byte
	Reverted bool
}

func openTestStore(t *testing.T, m *metrics.RPCMetrics) (KVStore, string) {
	path := filepath.Join(t.TempDir(), "cache")
	store, err := OpenKVStore(log.NewDefaultLogger("kvstore-test"), path, m)
	require.NoError(t, err)
	return store, path
}

func TestGenerateCacheKey(t *testing.T) {
	a, err := GenerateCacheKey("eth_call", uint64(10), []byte{1, 2})
	require.NoError(t, err)
	b, err := GenerateCacheKey("eth_call", uint64(10), []byte{1, 2})
	require.NoError(t, err)
	c, err := GenerateCacheKey("eth_call", uint64(8453), []byte{1, 2})
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Contains(t, a.Pretty(), "eth_call")
}

func TestGetFromCacheOrCall(t *testing.T) {
	m := metrics.NewDefaultRPCMetrics("kvstore_test")
	store, _ := openTestStore(t, &m)
	defer store.Close()

	key, err := GenerateCacheKey("eth_call", uint64(10), []byte("BRIDGE"))
	require.NoError(t, err)

	calls := 0
	compute := func() (*callOutcome, error) {
		calls++
		return &callOutcome{Output: []byte{0xde, 0xad}}, nil
	}

	hitsBefore := testutil.ToFloat64(m.CacheReads(metrics.CacheReadStatusHit))
	for i := 0; i < 3; i++ {
		v, err := GetFromCacheOrCall(store, false, key, compute)
		require.NoError(t, err)
		require.Equal(t, []byte{0xde, 0xad}, v.Output)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, hitsBefore+2, testutil.ToFloat64(m.CacheReads(metrics.CacheReadStatusHit)))

	// Volatile lookups always call through.
	_, err = GetFromCacheOrCall(store, true, key, compute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestGetFromCacheOrCallDoesNotCacheErrors(t *testing.T) {
	store, _ := openTestStore(t, nil)
	defer store.Close()

	key, err := GenerateCacheKey("eth_call", uint64(1))
	require.NoError(t, err)

	boom := errors.New("connection refused")
	_, err = GetFromCacheOrCall(store, false, key, func() (*callOutcome, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	has, err := store.Has(key)
	require.NoError(t, err)
	require.False(t, has)
}

func TestGetFromCacheOrCallBadValue(t *testing.T) {
	store, _ := openTestStore(t, nil)
	defer store.Close()

	key, err := GenerateCacheKey("eth_call", uint64(1))
	require.NoError(t, err)
	require.NoError(t, store.Put(key, []byte{0xff, 0x00, 0x13}))

	v, err := GetFromCacheOrCall(store, false, key, func() (*callOutcome, error) {
		return &callOutcome{Reverted: true}, nil
	})
	require.NoError(t, err)
	require.True(t, v.Reverted)
}

func TestCachePersists(t *testing.T) {
	store, path := openTestStore(t, nil)
	key, err := GenerateCacheKey("eth_call", uint64(10))
	require.NoError(t, err)
	_, err = GetFromCacheOrCall(store, false, key, func() (*callOutcome, error) {
		return &callOutcome{Output: []byte{1}}, nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenKVStore(log.NewDefaultLogger("kvstore-test"), path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := GetFromCacheOrCall(reopened, false, key, func() (*callOutcome, error) {
		return nil, errors.New("must be served from cache")
	})
	require.NoError(t, err)
	require.Equal(t, []byte{1}, v.Output)
}
