// Package evmtest simulates the JSON-RPC endpoints of EVM chains for tests.
package evmtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/evm/evmabi"
)

// ErrUnavailable is what a Backend answers while failing transiently.
var ErrUnavailable = errors.New("503 Service Unavailable")

// RevertError is a JSON-RPC "execution reverted" error.
type RevertError struct{}

func (RevertError) Error() string          { return "execution reverted" }
func (RevertError) ErrorCode() int         { return 3 }
func (RevertError) ErrorData() interface{} { return "0x" }

type selector [4]byte

// Backend answers eth_call for the contracts configured on it. Calls to other
// addresses behave like calls to an account without code: empty output.
// Calls to a configured contract with an unknown selector revert.
type Backend struct {
	chainID common.ChainID

	mu        sync.Mutex
	contracts map[ethCommon.Address]map[selector][]byte
	failures  int
	calls     int
	closed    bool
}

var _ evm.Backend = (*Backend)(nil)

// NewBackend creates a backend serving chain id.
func NewBackend(id common.ChainID) *Backend {
	return &Backend{
		chainID:   id,
		contracts: make(map[ethCommon.Address]map[selector][]byte),
	}
}

// ID returns the chain id the backend serves.
func (b *Backend) ID() common.ChainID {
	return b.chainID
}

// SetOutput makes `method` of `contract` return `values`.
func (b *Backend) SetOutput(contract ethCommon.Address, contractABI *abi.ABI, method string, values ...interface{}) {
	m, ok := contractABI.Methods[method]
	if !ok {
		panic(fmt.Sprintf("evmtest: unknown method %s", method))
	}
	out, err := m.Outputs.Pack(values...)
	if err != nil {
		panic(fmt.Sprintf("evmtest: packing %s output: %v", method, err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	methods, ok := b.contracts[contract]
	if !ok {
		methods = make(map[selector][]byte)
		b.contracts[contract] = methods
	}
	var sel selector
	copy(sel[:], m.ID)
	methods[sel] = out
}

// SetMintable deploys an OptimismMintableERC20 at token.
func (b *Backend) SetMintable(token, bridge, remoteToken ethCommon.Address) {
	b.SetOutput(token, evmabi.OptimismMintableERC20, "BRIDGE", bridge)
	b.SetOutput(token, evmabi.OptimismMintableERC20, "REMOTE_TOKEN", remoteToken)
}

// SetToken deploys a plain ERC-20 at token.
func (b *Backend) SetToken(token ethCommon.Address, decimals uint8) {
	b.SetOutput(token, evmabi.OptimismMintableERC20, "decimals", decimals)
}

// SetBridge deploys a StandardBridge at bridge, paired with otherBridge.
func (b *Backend) SetBridge(bridge, otherBridge ethCommon.Address) {
	b.SetOutput(bridge, evmabi.StandardBridge, "OTHER_BRIDGE", otherBridge)
}

// FailTransiently makes the next n calls fail with ErrUnavailable.
func (b *Backend) FailTransiently(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = n
}

// Calls returns how many eth_calls were received, failed ones included.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// CallContract implements ethereum.ContractCaller.
func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures > 0 {
		b.failures--
		return nil, ErrUnavailable
	}
	if msg.To == nil {
		return nil, fmt.Errorf("contract creation is not supported")
	}
	methods, ok := b.contracts[*msg.To]
	if !ok {
		return []byte{}, nil
	}
	if len(msg.Data) < 4 {
		return nil, RevertError{}
	}
	var sel selector
	copy(sel[:], msg.Data[:4])
	out, ok := methods[sel]
	if !ok {
		return nil, RevertError{}
	}
	return append([]byte(nil), out...), nil
}

// ChainID implements evm.Backend.
func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(uint64(b.chainID)), nil
}

// Close implements evm.Backend.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Dialer connects every chain to the backend serving its id.
func Dialer(backends ...*Backend) evm.Dialer {
	byID := make(map[common.ChainID]*Backend, len(backends))
	for _, b := range backends {
		byID[b.chainID] = b
	}
	return func(ctx context.Context, chain chains.Chain) (evm.Backend, error) {
		b, ok := byID[chain.ID]
		if !ok {
			return nil, fmt.Errorf("dialing chain %s: connection refused", chain.ID)
		}
		return b, nil
	}
}

// Address derives a deterministic test address from a label.
func Address(label string) ethCommon.Address {
	return ethCommon.BytesToAddress([]byte(label))
}
