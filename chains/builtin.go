package chains

// Public endpoints; rate limited, so override them for large runs.
var builtinChains = []Chain{
	// L1s.
	{ID: 1, Name: "Ethereum", RPCs: []string{"https://eth.merkle.io", "https://cloudflare-eth.com"}},
	{ID: 11155111, Name: "Sepolia", Testnet: true, RPCs: []string{"https://sepolia.drpc.org", "https://rpc.sepolia.org"}},

	// Superchain mainnets.
	{ID: 10, Name: "OP Mainnet", RPCs: []string{"https://mainnet.optimism.io"}},
	{ID: 130, Name: "Unichain", RPCs: []string{"https://mainnet.unichain.org"}},
	{ID: 185, Name: "Mint", RPCs: []string{"https://rpc.mintchain.io"}},
	{ID: 252, Name: "Fraxtal", RPCs: []string{"https://rpc.frax.com"}},
	{ID: 291, Name: "Orderly", RPCs: []string{"https://rpc.orderly.network"}},
	{ID: 480, Name: "World Chain", RPCs: []string{"https://worldchain-mainnet.g.alchemy.com/public"}},
	{ID: 690, Name: "Redstone", RPCs: []string{"https://rpc.redstonechain.com"}},
	{ID: 1135, Name: "Lisk", RPCs: []string{"https://rpc.api.lisk.com"}},
	{ID: 1868, Name: "Soneium", RPCs: []string{"https://rpc.soneium.org"}},
	{ID: 5000, Name: "Mantle", RPCs: []string{"https://rpc.mantle.xyz"}},
	{ID: 7560, Name: "Cyber", RPCs: []string{"https://cyber.alt.technology"}},
	{ID: 8453, Name: "Base", RPCs: []string{"https://mainnet.base.org"}},
	{ID: 34443, Name: "Mode", RPCs: []string{"https://mainnet.mode.network"}},
	{ID: 57073, Name: "Ink", RPCs: []string{"https://rpc-gel.inkonchain.com"}},
	{ID: 60808, Name: "BOB", RPCs: []string{"https://rpc.gobob.xyz"}},
	{ID: 81457, Name: "Blast", RPCs: []string{"https://rpc.blast.io"}},
	{ID: 7777777, Name: "Zora", RPCs: []string{"https://rpc.zora.energy"}},

	// Superchain testnets.
	{ID: 919, Name: "Mode Testnet", Testnet: true, RPCs: []string{"https://sepolia.mode.network"}},
	{ID: 1301, Name: "Unichain Sepolia", Testnet: true, RPCs: []string{"https://sepolia.unichain.org"}},
	{ID: 4202, Name: "Lisk Sepolia", Testnet: true, RPCs: []string{"https://rpc.sepolia-api.lisk.com"}},
	{ID: 84532, Name: "Base Sepolia", Testnet: true, RPCs: []string{"https://sepolia.base.org"}},
	{ID: 11155420, Name: "OP Sepolia", Testnet: true, RPCs: []string{"https://sepolia.optimism.io"}},
	{ID: 999999999, Name: "Zora Sepolia", Testnet: true, RPCs: []string{"https://sepolia.rpc.zora.energy"}},
}
