package chains

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/superbridgeapp/superchain-token-list/common"
)

// registryFile is the TOML layout of a chain registry overlay:
//
//	[chains.10]
//	name = "OP Mainnet"
//	rpcs = ["https://op.example.org", "https://mainnet.optimism.io"]
type registryFile struct {
	Chains map[string]fileChain `toml:"chains"`
}

type fileChain struct {
	Name    string   `toml:"name"`
	RPCs    []string `toml:"rpcs"`
	Testnet *bool    `toml:"testnet"`
}

// LoadFile merges a TOML registry file into r. Fields left out of the file
// keep their built-in values; new chains must list at least one rpc.
func (r *Registry) LoadFile(path string) error {
	var f registryFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("reading chain registry %s: %w", path, err)
	}
	for key, fc := range f.Chains {
		id, err := common.ParseChainID(key)
		if err != nil {
			return fmt.Errorf("chain registry %s: %w", path, err)
		}
		c, ok := r.chains[id]
		if !ok {
			c = Chain{ID: id}
		}
		if fc.Name != "" {
			c.Name = fc.Name
		}
		if len(fc.RPCs) > 0 {
			c.RPCs = append([]string(nil), fc.RPCs...)
		}
		if fc.Testnet != nil {
			c.Testnet = *fc.Testnet
		}
		if err := r.Put(c); err != nil {
			return fmt.Errorf("chain registry %s: %w", path, err)
		}
	}
	return nil
}
