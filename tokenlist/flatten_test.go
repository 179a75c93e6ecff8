package tokenlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func listEntry(id string, chain uint64, addr string, name string) Token {
	return Token{
		Name:     name,
		Symbol:   id,
		Decimals: 18,
		LogoURI:  "https://example.com/" + id + ".svg",
		Address:  addr,
		ChainID:  chainID(chain),
		Extensions: Extensions{
			OpTokenID:               id,
			StandardBridgeAddresses: ChainAddresses{},
		},
	}
}

func TestFlatten(t *testing.T) {
	list := &TokenList{Tokens: []Token{
		listEntry("WETH", 1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "Wrapped Ether"),
		listEntry("USDC", 1, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "USD Coin"),
		listEntry("WETH", 10, "0x4200000000000000000000000000000000000006", "Wrapped Ether (OP)"),
		listEntry("USDC", 8453, "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA", "USD Base Coin"),
		listEntry("WETH", 10, "0x4200000000000000000000000000000000000007", "Ignored name"),
	}}

	tokens, err := Flatten(list)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	require.Equal(t, TokenData{
		Name:      "Wrapped Ether",
		Symbol:    "WETH",
		Decimals:  18,
		LogoURI:   "https://example.com/WETH.svg",
		OpTokenID: "WETH",
		Addresses: ChainAddresses{
			1:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			10: "0x4200000000000000000000000000000000000007",
		},
	}, tokens[0])
	require.Equal(t, "USDC", tokens[1].OpTokenID)
	require.Equal(t, "USD Coin", tokens[1].Name)
	require.Len(t, tokens[1].Addresses, 2)
}

func TestFlattenRequiresOpTokenID(t *testing.T) {
	entry := listEntry("", 1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "Wrapped Ether")
	_, err := Flatten(&TokenList{Tokens: []Token{entry}})
	require.ErrorContains(t, err, "no opTokenId")
}

func TestFlattenEmpty(t *testing.T) {
	tokens, err := Flatten(&TokenList{})
	require.NoError(t, err)
	require.Empty(t, tokens)
}
