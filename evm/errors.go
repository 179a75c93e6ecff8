package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrNotImplemented is returned when a contract does not expose a method,
// e.g. OTHER_BRIDGE on an address that is not a StandardBridge.
var ErrNotImplemented = errors.New("method not implemented")

// JSON-RPC error code geth and most providers use for reverted calls.
const revertErrorCode = 3

type DeterministicError struct {
	// Note: .error is the implementation of .Error, .Unwrap etc. It is not
	// in the Unwrap chain. Use something like
	// `DeterministicError{fmt.Errorf("...: %w", err)}` to set up an
	// instance with `err` in the Unwrap chain.
	error
}

func (err DeterministicError) Is(target error) bool {
	if _, ok := target.(DeterministicError); ok {
		return true
	}
	return false
}

// isRevert reports whether the node executed the call and it failed. Only
// errors reported by the node count; transport errors never do.
func isRevert(err error) bool {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	if rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	msg := strings.ToLower(rpcErr.Error())
	return strings.Contains(msg, "revert") || strings.Contains(msg, "invalid opcode")
}

// revertReason describes a reverted call, decoding the Error(string) payload
// when the node returned one.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(data); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return fmt.Sprintf("%s: %s", err.Error(), reason)
				}
			}
		}
	}
	return err.Error()
}
