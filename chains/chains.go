// Package chains is the registry of EVM chains the token list spans, and the
// RPC endpoints used to reach them.
package chains

import (
	"errors"
	"fmt"
	"sort"

	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/config"
)

// ErrChainNotFound is returned for chain ids missing from the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain is a registry entry.
type Chain struct {
	ID      common.ChainID `json:"chainId"`
	Name    string         `json:"name"`
	Testnet bool           `json:"testnet"`
	// RPCs are ordered by preference. Never serialized: endpoints may carry API keys.
	RPCs []string `json:"-"`
}

// RPC returns the preferred RPC endpoint, or "" when none is known.
func (c Chain) RPC() string {
	if len(c.RPCs) == 0 {
		return ""
	}
	return c.RPCs[0]
}

// Registry maps chain ids to chains. It is not safe for concurrent mutation;
// build it fully before sharing it.
type Registry struct {
	chains map[common.ChainID]Chain
}

// NewRegistry returns a registry seeded with the built-in chains.
func NewRegistry() *Registry {
	r := &Registry{chains: make(map[common.ChainID]Chain, len(builtinChains))}
	for _, c := range builtinChains {
		c.RPCs = append([]string(nil), c.RPCs...)
		r.chains[c.ID] = c
	}
	return r
}

// Lookup returns the chain with the given id.
func (r *Registry) Lookup(id common.ChainID) (Chain, error) {
	c, ok := r.chains[id]
	if !ok {
		return Chain{}, fmt.Errorf("chain %s not found: %w", id, ErrChainNotFound)
	}
	return c, nil
}

// All returns every chain, ordered by id.
func (r *Registry) All() []Chain {
	all := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Put adds a chain or replaces the one with the same id.
func (r *Registry) Put(c Chain) error {
	if c.ID == 0 {
		return fmt.Errorf("chain %q: missing chain id", c.Name)
	}
	if len(c.RPCs) == 0 {
		return fmt.Errorf("chain %s: no rpc endpoint", c.ID)
	}
	if c.Name == "" {
		c.Name = "chain-" + c.ID.String()
	}
	r.chains[c.ID] = c
	return nil
}

// SetRPC makes url the preferred endpoint of a chain. Unknown chains are
// added under a generated name, so private devnets only need an endpoint.
func (r *Registry) SetRPC(id common.ChainID, url string) error {
	c, ok := r.chains[id]
	if !ok {
		c = Chain{ID: id}
	}
	c.RPCs = append([]string{url}, without(c.RPCs, url)...)
	return r.Put(c)
}

func without(urls []string, url string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != url {
			out = append(out, u)
		}
	}
	return out
}

// New builds the registry described by cfg: the built-in chains, overlaid
// with the registry file and then the per-chain endpoint overrides.
func New(cfg *config.ChainsConfig) (*Registry, error) {
	r := NewRegistry()
	if cfg.RegistryFile != "" {
		if err := r.LoadFile(cfg.RegistryFile); err != nil {
			return nil, err
		}
	}
	for key, url := range cfg.Endpoints {
		id, err := common.ParseChainID(key)
		if err != nil {
			return nil, err
		}
		if err := r.SetRPC(id, url); err != nil {
			return nil, err
		}
	}
	return r, nil
}
