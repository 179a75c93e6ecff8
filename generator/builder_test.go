package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

func TestAddToken(t *testing.T) {
	data := &tokenlist.TokenData{Name: "Token", Symbol: "TKN", Decimals: 18, OpTokenID: "TKN"}
	b := newBuilder(data)

	b.addToken(pair{
		baseChainID: 1, baseAddress: "0xL1", baseBridgeAddress: "0xL1BridgeToOP",
		mintableChainID: 10, mintableAddress: "0xOP", mintableBridgeAddress: "0xOPBridge",
	})
	require.Len(t, b.tokens, 2)
	require.Equal(t, "0xL1", b.tokens[0].Address)
	require.Equal(t, "0xOP", b.tokens[1].Address)

	// A second pair with the same base only extends the base entry.
	b.addToken(pair{
		baseChainID: 1, baseAddress: "0xL1", baseBridgeAddress: "0xL1BridgeToBase",
		mintableChainID: 8453, mintableAddress: "0xBASE", mintableBridgeAddress: "0xBaseBridge",
	})
	require.Len(t, b.tokens, 3)
	require.Equal(t, tokenlist.ChainAddresses{10: "0xL1BridgeToOP", 8453: "0xL1BridgeToBase"},
		b.tokens[0].Extensions.StandardBridgeAddresses)
	require.Equal(t, tokenlist.ChainAddresses{1: "0xBaseBridge"}, b.tokens[2].Extensions.StandardBridgeAddresses)

	// Re-adding an existing pair overwrites its bridges and appends nothing.
	b.addToken(pair{
		baseChainID: 1, baseAddress: "0xL1", baseBridgeAddress: "0xNewL1Bridge",
		mintableChainID: 10, mintableAddress: "0xOP", mintableBridgeAddress: "0xNewOPBridge",
	})
	require.Len(t, b.tokens, 3)
	require.Equal(t, "0xNewL1Bridge", b.tokens[0].Extensions.StandardBridgeAddresses[10])
	require.Equal(t, "0xNewOPBridge", b.tokens[1].Extensions.StandardBridgeAddresses[1])

	require.True(t, b.has(8453))
	require.False(t, b.has(5))
}
