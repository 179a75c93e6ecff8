package evm

import (
	"context"
	"errors"
	"fmt"

	ethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/superbridgeapp/superchain-token-list/evm/evmabi"
)

// Decimals reads the ERC-20 decimals of `token`. Tokens without the method
// yield ErrNotImplemented.
func (c *Client) Decimals(ctx context.Context, token ethCommon.Address) (uint8, error) {
	var decimals uint8
	if err := c.call(ctx, token, evmabi.OptimismMintableERC20, &decimals, "decimals"); err != nil {
		if !errors.Is(err, DeterministicError{}) {
			return 0, fmt.Errorf("calling decimals: %w", err)
		}
		c.logDeterministicError(token, "ERC20", "decimals", err)
		return 0, fmt.Errorf("decimals on %s: %w: %w", token.Hex(), ErrNotImplemented, err)
	}
	return decimals, nil
}
