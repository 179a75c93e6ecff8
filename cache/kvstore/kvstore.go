// Package kvstore implements a key-value store for caching immutable
// contract call results between runs.
package kvstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/akrylysov/pogreb"
	"github.com/fxamacker/cbor/v2"

	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
)

// A key in the KVStore.
type CacheKey []byte

// GenerateCacheKey derives a key from a method name and its parameters.
func GenerateCacheKey(methodName string, params ...interface{}) (CacheKey, error) {
	raw, err := cbor.Marshal([]interface{}{methodName, params})
	if err != nil {
		return nil, fmt.Errorf("encoding cache key for %s: %w", methodName, err)
	}
	return CacheKey(raw), nil
}

// A key-value store. Additional method-like functions that give a typed interface
// to the store (i.e. with typed values/keys instead of []byte) are provided below,
// taking KVStore as the first argument so they can use generics.
type KVStore interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Close() error
}

type pogrebKVStore struct {
	db *pogreb.DB

	path    string
	logger  *log.Logger
	metrics *metrics.RPCMetrics // if nil, no metrics are emitted
}

var _ KVStore = (*pogrebKVStore)(nil)

// Get implements KVStore.
// NOTE: Cache hit/miss metrics are not captured if you call this method directly.
// Consider using GetFromCacheOrCall() instead.
func (s *pogrebKVStore) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

// Has implements KVStore.
func (s *pogrebKVStore) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

// Put implements KVStore.
func (s *pogrebKVStore) Put(key []byte, value []byte) error {
	return s.db.Put(key, value)
}

// Close implements KVStore.
func (s *pogrebKVStore) Close() error {
	s.logger.Info("closing KVStore", "path", s.path, "entries", s.db.Count())
	return s.db.Close()
}

// OpenKVStore initializes a new KVStore backed by a database at `path`, or
// opens an existing one. `metrics` can be `nil`, in which case no metrics
// are emitted during operation.
func OpenKVStore(logger *log.Logger, path string, metrics *metrics.RPCMetrics) (KVStore, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	// Batch runs are short; syncing on Close is enough.
	db, err := pogreb.Open(path, &pogreb.Options{BackgroundSyncInterval: -1})
	if err != nil {
		return nil, fmt.Errorf("opening pogreb store at %s: %w", path, err)
	}
	logger.Info("opened KVStore", "path", path, "entries", db.Count())
	return &pogrebKVStore{
		db:      db,
		path:    path,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Pretty returns a human-readable version of the cache key. It tries to
// interpret it as CBOR, otherwise it returns the key's raw bytes as hex.
// Intended only for debugging. Not guaranteed to be a stable representation.
func (cacheKey CacheKey) Pretty() string {
	var pretty string
	var parsed interface{}
	if err := cbor.Unmarshal(cacheKey, &parsed); err == nil {
		pretty = fmt.Sprintf("%+v", parsed)
	} else {
		pretty = fmt.Sprintf("%x", cacheKey)
	}
	if len(pretty) > 100 {
		pretty = pretty[:95] + "[...]"
	}
	return pretty
}

var errNoSuchKey = errors.New("no such key")

func increaseReadCounter(cache KVStore, status metrics.CacheReadStatus) {
	// Make sure the cache supports metric-gathering.
	if metricsCache, ok := cache.(*pogrebKVStore); ok && metricsCache.metrics != nil {
		metricsCache.metrics.CacheReads(status).Inc()
	}
}

// fetchTypedValue fetches the value of `key` from the cache, interpreted as a `Value`.
func fetchTypedValue[Value any](cache KVStore, key CacheKey, value *Value) error {
	isCached, err := cache.Has(key)
	if err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusError)
		return err
	}
	if !isCached {
		increaseReadCounter(cache, metrics.CacheReadStatusMiss)
		return errNoSuchKey
	}
	raw, err := cache.Get(key)
	if err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusError)
		return fmt.Errorf("failed to fetch key %s from cache: %w", key.Pretty(), err)
	}
	if err = cbor.Unmarshal(raw, value); err != nil {
		increaseReadCounter(cache, metrics.CacheReadStatusBadValue)
		return fmt.Errorf("failed to unmarshal the value for key %s from cache into %T: %w; raw value was %x", key.Pretty(), value, err, raw)
	}
	increaseReadCounter(cache, metrics.CacheReadStatusHit)
	return nil
}

// GetFromCacheOrCall fetches the value of `key` from the cache if it exists,
// interpreted as a `Value`. If it does not exist, it calls `valueFunc` to get
// the value, and caches it before returning it. Errors from `valueFunc` are
// returned as-is and nothing is cached.
// If `volatile` is true, `valueFunc` is always called, and the result is not cached.
func GetFromCacheOrCall[Value any](cache KVStore, volatile bool, key CacheKey, valueFunc func() (*Value, error)) (*Value, error) {
	if volatile {
		return valueFunc()
	}

	var cached Value
	switch err := fetchTypedValue(cache, key, &cached); {
	case err == nil:
		return &cached, nil
	case errors.Is(err, errNoSuchKey): // Regular cache miss; continue below.
	default:
		// Log unexpected error and continue to call the backing API.
		if loggingCache, ok := cache.(*pogrebKVStore); ok {
			loggingCache.logger.Warn("error fetching value from cache", "key", key.Pretty(), "err", err)
		}
	}

	computed, err := valueFunc()
	if err != nil {
		return nil, err
	}
	raw, err := cbor.Marshal(computed)
	if err != nil {
		return nil, fmt.Errorf("encoding value for key %s: %w", key.Pretty(), err)
	}
	return computed, cache.Put(key, raw)
}
