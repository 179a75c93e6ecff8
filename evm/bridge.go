package evm

import (
	"context"
	"errors"
	"fmt"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/superbridgeapp/superchain-token-list/evm/evmabi"
)

// MintableToken describes an OptimismMintableERC20 deployment.
type MintableToken struct {
	// Bridge is the StandardBridge allowed to mint and burn the token.
	Bridge ethCommon.Address
	// RemoteToken is the token on the other side of the bridge.
	RemoteToken ethCommon.Address
}

// MintableToken checks whether `token` is an OptimismMintableERC20 by calling
// BRIDGE and REMOTE_TOKEN. If either method is deterministically unavailable
// it returns nil: the token is a base token, or not a bridged token at all.
// Transient failures are returned as errors.
func (c *Client) MintableToken(ctx context.Context, token ethCommon.Address) (*MintableToken, error) {
	var mintable MintableToken
	var bridgeErr, remoteTokenErr error

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		bridgeErr = c.call(groupCtx, token, evmabi.OptimismMintableERC20, &mintable.Bridge, "BRIDGE")
		if bridgeErr != nil && !errors.Is(bridgeErr, DeterministicError{}) {
			return fmt.Errorf("calling BRIDGE: %w", bridgeErr)
		}
		return nil
	})
	group.Go(func() error {
		remoteTokenErr = c.call(groupCtx, token, evmabi.OptimismMintableERC20, &mintable.RemoteToken, "REMOTE_TOKEN")
		if remoteTokenErr != nil && !errors.Is(remoteTokenErr, DeterministicError{}) {
			return fmt.Errorf("calling REMOTE_TOKEN: %w", remoteTokenErr)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if bridgeErr != nil {
		c.logDeterministicError(token, "OptimismMintableERC20", "BRIDGE", bridgeErr)
		return nil, nil
	}
	if remoteTokenErr != nil {
		c.logDeterministicError(token, "OptimismMintableERC20", "REMOTE_TOKEN", remoteTokenErr)
		return nil, nil
	}
	return &mintable, nil
}

// OtherBridge returns the counterpart of the StandardBridge at `bridge`.
// Contracts without OTHER_BRIDGE yield ErrNotImplemented.
func (c *Client) OtherBridge(ctx context.Context, bridge ethCommon.Address) (ethCommon.Address, error) {
	var other ethCommon.Address
	if err := c.call(ctx, bridge, evmabi.StandardBridge, &other, "OTHER_BRIDGE"); err != nil {
		if !errors.Is(err, DeterministicError{}) {
			return ethCommon.Address{}, fmt.Errorf("calling OTHER_BRIDGE: %w", err)
		}
		c.logDeterministicError(bridge, "StandardBridge", "OTHER_BRIDGE", err)
		return ethCommon.Address{}, fmt.Errorf("OTHER_BRIDGE on %s: %w: %w", bridge.Hex(), ErrNotImplemented, err)
	}
	return other, nil
}
