// Package evm reads the Optimism bridge contracts of the token list over
// JSON-RPC.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/superbridgeapp/superchain-token-list/cache/kvstore"
	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
)

// Backend is the subset of an ethclient.Client the token list reads with.
type Backend interface {
	ethereum.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Options are shared by every client of a pool.
type Options struct {
	RPC config.RPCConfig
	// Cache holds call outcomes across runs. Optional.
	Cache kvstore.KVStore
	// Metrics are emitted for every attempt. Optional.
	Metrics *metrics.RPCMetrics
}

// Client issues contract calls against a single chain.
type Client struct {
	chain   chains.Chain
	backend Backend
	limiter *rate.Limiter
	opts    Options
	logger  *log.Logger
}

// callOutcome is what a node answered to an eth_call. It is what gets cached:
// contract constants like BRIDGE never change once deployed, and neither does
// their absence.
type callOutcome struct {
	Output   []byte
	Reverted bool
	Reason   string
}

// NewClient wraps backend, which must be connected to chain.
func NewClient(chain chains.Chain, backend Backend, opts Options, logger *log.Logger) *Client {
	limit := rate.Inf
	if opts.RPC.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RPC.RequestsPerSecond)
	}
	return &Client{
		chain:   chain,
		backend: backend,
		limiter: rate.NewLimiter(limit, opts.RPC.Burst),
		opts:    opts,
		logger:  logger.With("chain_id", chain.ID.String()),
	}
}

// Chain returns the chain the client reads from.
func (c *Client) Chain() chains.Chain {
	return c.chain
}

// call invokes `method(params...)` on the contract at `contract` and unpacks
// the output into `result`, whose type must match the method's output type.
// Reverts and undecodable outputs are returned as DeterministicError.
func (c *Client) call(
	ctx context.Context,
	contract ethCommon.Address,
	contractABI *abi.ABI,
	result interface{},
	method string,
	params ...interface{},
) error {
	inPacked, err := contractABI.Pack(method, params...)
	if err != nil {
		return fmt.Errorf("packing %s call data: %w", method, err)
	}
	outcome, err := c.cachedCall(ctx, method, contract, inPacked)
	if err != nil {
		return fmt.Errorf("calling %s on %s: %w", method, contract.Hex(), err)
	}
	if outcome.Reverted {
		return DeterministicError{fmt.Errorf("calling %s on %s: %s", method, contract.Hex(), outcome.Reason)}
	}
	if err = contractABI.UnpackIntoInterface(result, method, outcome.Output); err != nil {
		return DeterministicError{fmt.Errorf("unpacking %s output: %w", method, err)}
	}
	return nil
}

func (c *Client) cachedCall(ctx context.Context, method string, to ethCommon.Address, data []byte) (*callOutcome, error) {
	if c.opts.Cache == nil {
		return c.callWithRetry(ctx, method, to, data)
	}
	key, err := kvstore.GenerateCacheKey("eth_call", uint64(c.chain.ID), to.Bytes(), data)
	if err != nil {
		return nil, err
	}
	return kvstore.GetFromCacheOrCall(c.opts.Cache, false, key, func() (*callOutcome, error) {
		return c.callWithRetry(ctx, method, to, data)
	})
}

func (c *Client) callWithRetry(ctx context.Context, method string, to ethCommon.Address, data []byte) (*callOutcome, error) {
	return retry.DoWithData(
		func() (*callOutcome, error) {
			return c.attempt(ctx, method, to, data)
		},
		c.retryOptions(ctx, method, "contract", to.Hex())...,
	)
}

func (c *Client) retryOptions(ctx context.Context, what string, keyvals ...interface{}) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.opts.RPC.MaxAttempts),
		retry.Delay(c.opts.RPC.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("rpc request failed, retrying",
				append([]interface{}{"request", what, "attempt", n + 1, "err", err}, keyvals...)...,
			)
		}),
	}
}

// attempt performs one rate limited eth_call at the latest block.
func (c *Client) attempt(ctx context.Context, method string, to ethCommon.Address, data []byte) (*callOutcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, retry.Unrecoverable(err)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.RPC.Timeout)
	defer cancel()

	var timer *prometheus.Timer
	if c.opts.Metrics != nil {
		timer = c.opts.Metrics.CallTimer(c.chain.ID.String(), method)
	}
	out, err := c.backend.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	c.observe(method, timer, err)
	switch {
	case err == nil:
		return &callOutcome{Output: out}, nil
	case isRevert(err):
		return &callOutcome{Reverted: true, Reason: revertReason(err)}, nil
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, retry.Unrecoverable(err)
	default:
		return nil, err
	}
}

func (c *Client) observe(method string, timer *prometheus.Timer, err error) {
	if c.opts.Metrics == nil {
		return
	}
	timer.ObserveDuration()
	status := metrics.CallStatusOk
	switch {
	case err == nil:
	case isRevert(err):
		status = metrics.CallStatusReverted
	default:
		status = metrics.CallStatusError
	}
	c.opts.Metrics.Calls(c.chain.ID.String(), method, status).Inc()
}

// logDeterministicError makes a note of a deterministic failure the caller
// knows how to handle.
func (c *Client) logDeterministicError(contract ethCommon.Address, interfaceName string, method string, err error) {
	c.logger.Debug("call failed deterministically",
		"contract", contract.Hex(),
		"interface_name", interfaceName,
		"method", method,
		"err", err,
	)
}
