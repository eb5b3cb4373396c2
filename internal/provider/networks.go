package provider

// ensRegistryAddress is the ENS registry deployment shared by Ethereum
// mainnet and its public testnets.
const ensRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// knownNetwork holds static metadata for chains with well-known identifiers.
type knownNetwork struct {
	name       string
	ensAddress string
}

var knownNetworks = map[int64]knownNetwork{
	1:        {name: "mainnet", ensAddress: ensRegistryAddress},
	5:        {name: "goerli", ensAddress: ensRegistryAddress},
	10:       {name: "optimism"},
	56:       {name: "bsc"},
	100:      {name: "gnosis"},
	137:      {name: "polygon"},
	8453:     {name: "base"},
	42161:    {name: "arbitrum"},
	43114:    {name: "avalanche"},
	11155111: {name: "sepolia", ensAddress: ensRegistryAddress},
}

// networkFromChainID builds a Network snapshot for the given chain id,
// falling back to the "unknown" name for chains without static metadata.
func networkFromChainID(chainID int64) Network {
	known, ok := knownNetworks[chainID]
	if !ok {
		return Network{Name: "unknown", ChainID: chainID}
	}

	return Network{
		Name:       known.name,
		ChainID:    chainID,
		ENSAddress: known.ensAddress,
	}
}
