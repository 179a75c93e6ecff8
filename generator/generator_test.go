package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/evm/evmtest"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

const (
	ethereum common.ChainID = 1
	optimism common.ChainID = 10
	base     common.ChainID = 8453
)

var (
	usdcL1   = evmtest.Address("usdc-l1")
	usdcOP   = evmtest.Address("usdc-op")
	usdcBase = evmtest.Address("usdc-base")

	opL1Bridge   = evmtest.Address("op-l1-bridge")
	opL2Bridge   = evmtest.Address("op-l2-bridge")
	baseL1Bridge = evmtest.Address("base-l1-bridge")
	baseL2Bridge = evmtest.Address("base-l2-bridge")
)

type testChains struct {
	l1, op, base *evmtest.Backend
}

func newTestChains() *testChains {
	c := &testChains{
		l1:   evmtest.NewBackend(ethereum),
		op:   evmtest.NewBackend(optimism),
		base: evmtest.NewBackend(base),
	}
	c.l1.SetToken(usdcL1, 6)
	c.l1.SetBridge(opL1Bridge, opL2Bridge)
	c.l1.SetBridge(baseL1Bridge, baseL2Bridge)

	c.op.SetMintable(usdcOP, opL2Bridge, usdcL1)
	c.op.SetBridge(opL2Bridge, opL1Bridge)

	c.base.SetMintable(usdcBase, baseL2Bridge, usdcL1)
	c.base.SetBridge(baseL2Bridge, baseL1Bridge)
	return c
}

var generatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, c *testChains) *Generator {
	logger := log.NewDefaultLogger("generator-test")
	opts := evm.Options{RPC: config.RPCConfig{Timeout: time.Second, MaxAttempts: 2, RetryDelay: time.Millisecond}}
	pool := evm.NewPool(chains.NewRegistry(), evmtest.Dialer(c.l1, c.op, c.base), opts, logger)
	t.Cleanup(pool.Close)

	cfg := config.GenerateConfig{Concurrency: 2}
	meta := config.TokenListConfig{
		Name:     "Test List",
		LogoURI:  "https://example.com/logo.svg",
		Keywords: []string{"test"},
		Version:  tokenlist.Version{Major: 1, Minor: 2, Patch: 3},
	}
	g := New(pool, &cfg, &meta, logger)
	g.now = func() time.Time { return generatedAt }
	return g
}

func usdcData() tokenlist.TokenData {
	return tokenlist.TokenData{
		Name:      "USD Coin",
		Symbol:    "USDC",
		Decimals:  6,
		LogoURI:   "https://example.com/usdc.png",
		OpTokenID: "USDC",
		Addresses: tokenlist.ChainAddresses{
			ethereum: strings.ToLower(usdcL1.Hex()),
			optimism: usdcOP.Hex(),
			base:     usdcBase.Hex(),
		},
	}
}

func TestGenerate(t *testing.T) {
	g := newTestGenerator(t, newTestChains())

	list, err := g.Generate(context.Background(), []tokenlist.TokenData{usdcData()})
	require.NoError(t, err)

	require.Equal(t, "Test List", list.Name)
	require.Equal(t, "https://example.com/logo.svg", list.LogoURI)
	require.Equal(t, []string{"test"}, list.Keywords)
	require.Equal(t, tokenlist.Version{Major: 1, Minor: 2, Patch: 3}, list.Version)
	require.Equal(t, generatedAt, list.Timestamp.Time)

	require.Len(t, list.Tokens, 3)

	l1 := list.Tokens[0]
	require.Equal(t, ethereum, l1.ChainID)
	// The base entry uses REMOTE_TOKEN, checksummed.
	require.Equal(t, usdcL1.Hex(), l1.Address)
	require.Equal(t, tokenlist.ChainAddresses{
		optimism: opL1Bridge.Hex(),
		base:     baseL1Bridge.Hex(),
	}, l1.Extensions.StandardBridgeAddresses)

	op := list.Tokens[1]
	require.Equal(t, optimism, op.ChainID)
	require.Equal(t, usdcOP.Hex(), op.Address)
	require.Equal(t, tokenlist.ChainAddresses{ethereum: opL2Bridge.Hex()}, op.Extensions.StandardBridgeAddresses)

	b := list.Tokens[2]
	require.Equal(t, base, b.ChainID)
	require.Equal(t, tokenlist.ChainAddresses{ethereum: baseL2Bridge.Hex()}, b.Extensions.StandardBridgeAddresses)

	for _, tok := range list.Tokens {
		require.Equal(t, "USD Coin", tok.Name)
		require.Equal(t, "USDC", tok.Symbol)
		require.Equal(t, uint8(6), tok.Decimals)
		require.Equal(t, "USDC", tok.Extensions.OpTokenID)
	}
}

func TestGenerateKeepsDataOrder(t *testing.T) {
	c := newTestChains()
	daiL1, daiOP := evmtest.Address("dai-l1"), evmtest.Address("dai-op")
	c.l1.SetToken(daiL1, 18)
	c.op.SetMintable(daiOP, opL2Bridge, daiL1)
	g := newTestGenerator(t, c)

	dai := tokenlist.TokenData{
		Name: "Dai", Symbol: "DAI", Decimals: 18, OpTokenID: "DAI",
		Addresses: tokenlist.ChainAddresses{ethereum: daiL1.Hex(), optimism: daiOP.Hex()},
	}
	unbridged := tokenlist.TokenData{
		Name: "Solo", Symbol: "SOLO", Decimals: 18, OpTokenID: "SOLO",
		Addresses: tokenlist.ChainAddresses{ethereum: evmtest.Address("solo").Hex()},
	}

	list, err := g.Generate(context.Background(), []tokenlist.TokenData{dai, unbridged, usdcData()})
	require.NoError(t, err)

	var ids []string
	for _, tok := range list.Tokens {
		ids = append(ids, tok.Extensions.OpTokenID+":"+tok.ChainID.String())
	}
	require.Equal(t, []string{"DAI:1", "DAI:10", "USDC:1", "USDC:10", "USDC:8453"}, ids)
}

func TestGenerateEmpty(t *testing.T) {
	g := newTestGenerator(t, newTestChains())
	list, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, list.Tokens)
	require.Empty(t, list.Tokens)
}

func TestGenerateNoBaseChain(t *testing.T) {
	g := newTestGenerator(t, newTestChains())
	data := usdcData()
	delete(data.Addresses, ethereum)

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{data})
	require.ErrorIs(t, err, ErrNoBaseChain)
	require.ErrorContains(t, err, "no base chain found for USDC:10")
}

func TestGenerateOtherBridgeNotFound(t *testing.T) {
	c := newTestChains()
	c.op.SetMintable(usdcOP, evmtest.Address("not-a-bridge"), usdcL1)
	g := newTestGenerator(t, c)

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{usdcData()})
	require.ErrorIs(t, err, ErrOtherBridgeNotFound)
}

func TestGenerateUnknownChain(t *testing.T) {
	g := newTestGenerator(t, newTestChains())
	data := usdcData()
	data.Addresses[424242] = evmtest.Address("elsewhere").Hex()

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{data})
	require.ErrorIs(t, err, chains.ErrChainNotFound)
}

func TestGenerateInvalidAddress(t *testing.T) {
	g := newTestGenerator(t, newTestChains())
	data := usdcData()
	data.Addresses[optimism] = "0x1234"

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{data})
	require.ErrorContains(t, err, "invalid address '0x1234'")
}

func TestGenerateTransientFailure(t *testing.T) {
	c := newTestChains()
	c.base.FailTransiently(1000)
	g := newTestGenerator(t, c)

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{usdcData()})
	require.ErrorIs(t, err, evmtest.ErrUnavailable)
}

func TestGenerateReportsFirstFailureInChainOrder(t *testing.T) {
	g := newTestGenerator(t, newTestChains())
	data := usdcData()
	data.Addresses[optimism] = "bogus"
	data.Addresses[base] = "also bogus"

	_, err := g.Generate(context.Background(), []tokenlist.TokenData{data})
	require.ErrorContains(t, err, "chain 10: invalid address 'bogus'")
}
