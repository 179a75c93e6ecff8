package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/log"
)

// Source hands out the client of a chain.
type Source interface {
	Chain(ctx context.Context, id common.ChainID) (*Client, error)
}

// Dialer connects to the preferred endpoint of a chain.
type Dialer func(ctx context.Context, chain chains.Chain) (Backend, error)

// DialEthClient dials the chain's RPC with go-ethereum's ethclient.
func DialEthClient(ctx context.Context, chain chains.Chain) (Backend, error) {
	url := chain.RPC()
	if url == "" {
		return nil, fmt.Errorf("chain %s: no rpc endpoint", chain.ID)
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s rpc: %w", chain.Name, err)
	}
	return client, nil
}

type poolEntry struct {
	once   sync.Once
	client *Client
	err    error
}

// Pool lazily connects one client per chain of the registry and reuses it.
type Pool struct {
	registry *chains.Registry
	dial     Dialer
	opts     Options
	logger   *log.Logger

	mu      sync.Mutex
	entries map[common.ChainID]*poolEntry
}

var _ Source = (*Pool)(nil)

// NewPool creates a pool over the chains of registry.
func NewPool(registry *chains.Registry, dial Dialer, opts Options, logger *log.Logger) *Pool {
	return &Pool{
		registry: registry,
		dial:     dial,
		opts:     opts,
		logger:   logger,
		entries:  make(map[common.ChainID]*poolEntry),
	}
}

// Chain implements Source. A chain that failed to connect keeps failing for
// the lifetime of the pool.
func (p *Pool) Chain(ctx context.Context, id common.ChainID) (*Client, error) {
	chain, err := p.registry.Lookup(id)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	entry, ok := p.entries[id]
	if !ok {
		entry = &poolEntry{}
		p.entries[id] = entry
	}
	p.mu.Unlock()

	entry.once.Do(func() {
		entry.client, entry.err = p.connect(ctx, chain)
	})
	return entry.client, entry.err
}

func (p *Pool) connect(ctx context.Context, chain chains.Chain) (*Client, error) {
	backend, err := p.dial(ctx, chain)
	if err != nil {
		return nil, err
	}
	client := NewClient(chain, backend, p.opts, p.logger)
	if !p.opts.RPC.SkipChainIDCheck {
		if err = client.checkChainID(ctx); err != nil {
			backend.Close()
			return nil, err
		}
	}
	p.logger.Info("connected to chain", "chain_id", chain.ID.String(), "chain_name", chain.Name)
	return client, nil
}

// checkChainID makes sure the endpoint serves the chain it is configured for.
func (c *Client) checkChainID(ctx context.Context) error {
	id, err := retry.DoWithData(
		func() (*big.Int, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.opts.RPC.Timeout)
			defer cancel()
			return c.backend.ChainID(callCtx)
		},
		c.retryOptions(ctx, "eth_chainId")...,
	)
	if err != nil {
		return fmt.Errorf("chain %s: querying eth_chainId: %w", c.chain.ID, err)
	}
	if !id.IsUint64() || common.ChainID(id.Uint64()) != c.chain.ID {
		return fmt.Errorf("chain %s: rpc endpoint serves chain %s", c.chain.ID, id)
	}
	return nil
}

// Close disconnects every client.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.entries {
		if entry.client != nil {
			entry.client.backend.Close()
		}
	}
	p.entries = make(map[common.ChainID]*poolEntry)
}
