package evmabi

import (
	_ "embed"
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func MustUnmarshalABI(artifactJSON []byte) *abi.ABI {
	var artifact struct {
		ABI *abi.ABI
	}
	if err := json.Unmarshal(artifactJSON, &artifact); err != nil {
		panic(err)
	}
	return artifact.ABI
}

//go:embed contracts/artifacts/OptimismMintableERC20.json
var artifactOptimismMintableERC20JSON []byte
var OptimismMintableERC20 = MustUnmarshalABI(artifactOptimismMintableERC20JSON)

//go:embed contracts/artifacts/StandardBridge.json
var artifactStandardBridgeJSON []byte
var StandardBridge = MustUnmarshalABI(artifactStandardBridgeJSON)
