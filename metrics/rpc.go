// Package metrics contains the prometheus infrastructure.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CallStatus partitions contract call counts.
type CallStatus string

const (
	CallStatusOk       CallStatus = "ok"
	CallStatusReverted CallStatus = "reverted" // The node answered; the method is not available on the contract.
	CallStatusError    CallStatus = "error"    // Transport or node failure; the call may be retried.
)

type CacheReadStatus string

const (
	CacheReadStatusHit      CacheReadStatus = "hit"
	CacheReadStatusMiss     CacheReadStatus = "miss"
	CacheReadStatusBadValue CacheReadStatus = "bad_value" // Value in cache was not valid (likely because of mismatched types / CBOR encoding).
	CacheReadStatusError    CacheReadStatus = "error"     // Other internal error reading from cache.
)

// RPCMetrics instruments on-chain reads.
type RPCMetrics struct {
	// Counts of contract calls, partitioned by chain, method and status.
	calls *prometheus.CounterVec

	// Latencies of single contract call attempts.
	latencies *prometheus.HistogramVec

	// Cache hit rates for the local call cache.
	cacheReads *prometheus.CounterVec
}

// NewDefaultRPCMetrics creates Prometheus metric instrumentation for
// contract calls. Collectors are shared between instances with the same pkg.
func NewDefaultRPCMetrics(pkg string) RPCMetrics {
	metrics := RPCMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_rpc_calls", pkg),
				Help: "How many contract calls were attempted, partitioned by chain, method and status.",
			},
			[]string{"chain_id", "method", "status"},
		),
		latencies: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: fmt.Sprintf("%s_rpc_latencies", pkg),
				Help: "How long contract call attempts take, partitioned by chain and method.",
			},
			[]string{"chain_id", "method"},
		),
		cacheReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_local_cache_reads", pkg),
				Help: "How many local cache reads occur, partitioned by status (hit, miss, bad_value, error).",
			},
			[]string{"status"},
		),
	}
	metrics.calls = registerOnce(metrics.calls)
	metrics.latencies = registerOnce(metrics.latencies)
	metrics.cacheReads = registerOnce(metrics.cacheReads)
	return metrics
}

// Calls returns the counter for contract calls with the given outcome.
func (m *RPCMetrics) Calls(chainID string, method string, status CallStatus) prometheus.Counter {
	return m.calls.WithLabelValues(chainID, method, string(status))
}

// CallTimer returns a new latency timer for a contract call attempt.
func (m *RPCMetrics) CallTimer(chainID string, method string) *prometheus.Timer {
	return prometheus.NewTimer(m.latencies.WithLabelValues(chainID, method))
}

// CacheReads returns the counter for local cache reads with the given status.
func (m *RPCMetrics) CacheReads(status CacheReadStatus) prometheus.Counter {
	return m.cacheReads.WithLabelValues(string(status))
}

// registerOnce registers the collector, or returns the identical collector
// that is already registered. Panics on any other registration failure.
func registerOnce[C prometheus.Collector](collector C) C {
	err := prometheus.Register(collector)
	if err == nil {
		return collector
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}
