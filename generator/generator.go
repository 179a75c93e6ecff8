// Package generator builds the canonical token list from the per-token data
// files by reading the bridge contracts of every declared deployment.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

var (
	// ErrNoBaseChain is returned when a mintable token's REMOTE_TOKEN is not
	// one of the addresses declared for it.
	ErrNoBaseChain = errors.New("no base chain found")
	// ErrOtherBridgeNotFound is returned when the bridge of a mintable token
	// does not expose OTHER_BRIDGE.
	ErrOtherBridgeNotFound = errors.New("OTHER_BRIDGE not found")
)

// Generator turns token data into token list entries.
type Generator struct {
	source evm.Source
	cfg    config.GenerateConfig
	meta   config.TokenListConfig
	logger *log.Logger

	now func() time.Time
}

// New returns a generator reading contracts through source.
func New(source evm.Source, cfg *config.GenerateConfig, meta *config.TokenListConfig, logger *log.Logger) *Generator {
	return &Generator{
		source: source,
		cfg:    *cfg,
		meta:   *meta,
		logger: logger.WithModule("generator"),
		now:    time.Now,
	}
}

// Generate builds the token list. Entries keep the order of `data`, and
// within a token the order in which reconciliation appended them.
func (g *Generator) Generate(ctx context.Context, data []tokenlist.TokenData) (*tokenlist.TokenList, error) {
	results := make([][]tokenlist.Token, len(data))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.cfg.Concurrency)
	for i := range data {
		group.Go(func() error {
			tokens, err := g.Tokens(groupCtx, &data[i])
			if err != nil {
				return fmt.Errorf("token %s: %w", data[i].OpTokenID, err)
			}
			results[i] = tokens
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	list := &tokenlist.TokenList{
		Name:      g.meta.Name,
		LogoURI:   g.meta.LogoURI,
		Keywords:  append([]string{}, g.meta.Keywords...),
		Timestamp: tokenlist.Timestamp{Time: g.now().UTC()},
		Tokens:    []tokenlist.Token{},
		Version:   g.meta.Version,
	}
	for _, tokens := range results {
		list.Tokens = append(list.Tokens, tokens...)
	}
	g.logger.Info("generated token list", "tokens", len(data), "entries", len(list.Tokens))
	return list, nil
}

// Tokens returns the token list entries of a single token.
func (g *Generator) Tokens(ctx context.Context, data *tokenlist.TokenData) ([]tokenlist.Token, error) {
	chainIDs := data.Addresses.ChainIDs()
	probes := make([]pairProbe, len(chainIDs))

	// Every chain is probed in parallel; only the first failure in chain order
	// is reported, as if the chains had been probed one after the other.
	var group errgroup.Group
	for i, chainID := range chainIDs {
		group.Go(func() error {
			probes[i] = g.probe(ctx, data, chainID)
			return nil
		})
	}
	_ = group.Wait()

	builder := newBuilder(data)
	for _, p := range probes {
		if p.err != nil {
			return nil, p.err
		}
		if p.mintable == nil {
			continue
		}
		builder.addToken(pair{
			baseChainID:           p.baseChainID,
			baseAddress:           p.mintable.RemoteToken.Hex(),
			baseBridgeAddress:     p.otherBridge.Hex(),
			mintableChainID:       p.chainID,
			mintableAddress:       data.Addresses[p.chainID],
			mintableBridgeAddress: p.mintable.Bridge.Hex(),
		})
	}

	for _, chainID := range chainIDs {
		if !builder.has(chainID) {
			g.logger.Warn("declared address is not part of any bridge pair",
				"op_token_id", data.OpTokenID,
				"chain_id", chainID.String(),
				"address", data.Addresses[chainID],
			)
		}
	}
	g.logger.Debug("reconciled token", "op_token_id", data.OpTokenID, "entries", len(builder.tokens))
	return builder.tokens, nil
}

// pairProbe is what the contracts on one chain say about a token.
type pairProbe struct {
	chainID common.ChainID
	// nil when the deployment is not an OptimismMintableERC20.
	mintable    *evm.MintableToken
	baseChainID common.ChainID
	otherBridge ethCommon.Address
	err         error
}

func (g *Generator) probe(ctx context.Context, data *tokenlist.TokenData, chainID common.ChainID) pairProbe {
	p := pairProbe{chainID: chainID}
	address, err := common.ParseAddress(data.Addresses[chainID])
	if err != nil {
		p.err = fmt.Errorf("chain %s: %w", chainID, err)
		return p
	}
	client, err := g.source.Chain(ctx, chainID)
	if err != nil {
		p.err = err
		return p
	}
	p.mintable, err = client.MintableToken(ctx, address)
	if err != nil {
		p.err = fmt.Errorf("chain %s: %w", chainID, err)
		return p
	}
	if p.mintable == nil {
		return p
	}

	baseChainID, found, err := data.Addresses.FindChain(p.mintable.RemoteToken.Hex())
	switch {
	case err != nil:
		p.err = err
		return p
	case !found:
		p.err = fmt.Errorf("%w for %s:%s", ErrNoBaseChain, data.Symbol, chainID)
		return p
	}
	p.baseChainID = baseChainID

	p.otherBridge, err = client.OtherBridge(ctx, p.mintable.Bridge)
	switch {
	case errors.Is(err, evm.ErrNotImplemented):
		p.err = fmt.Errorf("chain %s: bridge %s: %w", chainID, p.mintable.Bridge.Hex(), ErrOtherBridgeNotFound)
	case err != nil:
		p.err = fmt.Errorf("chain %s: %w", chainID, err)
	}
	return p
}
