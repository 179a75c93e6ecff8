package common

import (
	"fmt"

	ethCommon "github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a 0x-prefixed hex address. Checksums are not enforced,
// mixed-case input is accepted as-is.
func ParseAddress(s string) (ethCommon.Address, error) {
	if !ethCommon.IsHexAddress(s) {
		return ethCommon.Address{}, fmt.Errorf("invalid address '%s'", s)
	}
	return ethCommon.HexToAddress(s), nil
}

// IsAddressEqual reports whether two hex addresses refer to the same account,
// ignoring case.
func IsAddressEqual(a, b string) (bool, error) {
	ecA, err := ParseAddress(a)
	if err != nil {
		return false, err
	}
	ecB, err := ParseAddress(b)
	if err != nil {
		return false, err
	}
	return ecA == ecB, nil
}
