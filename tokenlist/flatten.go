package tokenlist

import "fmt"

// Flatten groups the entries of a canonical list by opTokenId, in order of
// first appearance. The first entry of a group supplies the token metadata;
// every entry contributes its address, a later entry for the same chain
// replacing an earlier one.
func Flatten(list *TokenList) ([]TokenData, error) {
	var tokens []TokenData
	index := map[string]int{}
	for _, token := range list.Tokens {
		id := token.Extensions.OpTokenID
		if id == "" {
			return nil, fmt.Errorf("token %s on chain %s has no opTokenId", token.Address, token.ChainID)
		}
		if i, ok := index[id]; ok {
			tokens[i].Addresses[token.ChainID] = token.Address
			continue
		}
		index[id] = len(tokens)
		tokens = append(tokens, TokenData{
			Name:      token.Name,
			Symbol:    token.Symbol,
			Decimals:  token.Decimals,
			LogoURI:   token.LogoURI,
			OpTokenID: id,
			Addresses: ChainAddresses{token.ChainID: token.Address},
		})
	}
	return tokens, nil
}
