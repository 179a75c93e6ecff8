package generator

import (
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

// pair is one bridged deployment: a mintable token and the base token it
// represents, each with the StandardBridge on its side.
type pair struct {
	baseChainID       common.ChainID
	baseAddress       string
	baseBridgeAddress string

	mintableChainID       common.ChainID
	mintableAddress       string
	mintableBridgeAddress string
}

// builder accumulates the token list entries of a single token, at most one
// per chain.
type builder struct {
	data   *tokenlist.TokenData
	tokens []tokenlist.Token
}

func newBuilder(data *tokenlist.TokenData) *builder {
	return &builder{data: data, tokens: []tokenlist.Token{}}
}

func (b *builder) find(chainID common.ChainID) *tokenlist.Token {
	for i := range b.tokens {
		if b.tokens[i].ChainID == chainID {
			return &b.tokens[i]
		}
	}
	return nil
}

func (b *builder) has(chainID common.ChainID) bool {
	return b.find(chainID) != nil
}

// addToken records both sides of a pair. An existing entry gains the bridge
// towards the other side; a missing one is appended, base side first.
func (b *builder) addToken(p pair) {
	if base := b.find(p.baseChainID); base != nil {
		base.Extensions.StandardBridgeAddresses[p.mintableChainID] = p.baseBridgeAddress
	} else {
		b.tokens = append(b.tokens, b.newToken(p.baseChainID, p.baseAddress, p.mintableChainID, p.baseBridgeAddress))
	}

	if mintable := b.find(p.mintableChainID); mintable != nil {
		mintable.Extensions.StandardBridgeAddresses[p.baseChainID] = p.mintableBridgeAddress
	} else {
		b.tokens = append(b.tokens, b.newToken(p.mintableChainID, p.mintableAddress, p.baseChainID, p.mintableBridgeAddress))
	}
}

func (b *builder) newToken(chainID common.ChainID, address string, remoteChainID common.ChainID, bridge string) tokenlist.Token {
	return tokenlist.Token{
		Name:     b.data.Name,
		Symbol:   b.data.Symbol,
		Decimals: b.data.Decimals,
		LogoURI:  b.data.LogoURI,
		Address:  address,
		ChainID:  chainID,
		Extensions: tokenlist.Extensions{
			OpTokenID:               b.data.OpTokenID,
			StandardBridgeAddresses: tokenlist.ChainAddresses{remoteChainID: bridge},
		},
	}
}
