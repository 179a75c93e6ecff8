// Package common holds small types shared by every part of the token list tooling.
package common

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChainID is an EVM chain id (EIP-155).
//
// It deliberately does not implement encoding.TextMarshaler: `chainId`
// fields must stay JSON numbers. Object keys are handled by tokenlist.ChainAddresses.
type ChainID uint64

// ParseChainID parses a decimal chain id, e.g. a JSON object key.
func ParseChainID(s string) (ChainID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id '%s': %w", s, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid chain id '%s': must be positive", s)
	}
	return ChainID(id), nil
}

func (c ChainID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// SortedChainIDs returns the keys of m in ascending numeric order.
func SortedChainIDs[V any](m map[ChainID]V) []ChainID {
	ids := make([]ChainID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ContextKey is used to store values in a request context.
type ContextKey string

// RequestIDContextKey is the key under which the API stores the request id.
const RequestIDContextKey ContextKey = "request_id"
