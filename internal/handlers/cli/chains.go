package cli

import (
	"context"

	"github.com/gabapcia/walletbridge/internal/chainregistry"

	"github.com/urfave/cli/v3"
)

// chainCommand groups the chain registry subcommands.
//
// Usage examples:
//
//	walletbridge chain add --network polygon --chain-id 137 --name "Polygon Mainnet" \
//	    --currency-name "POL" --currency-symbol POL --currency-decimals 18 \
//	    --rpc-url https://polygon-rpc.com
//	walletbridge chain rm --network polygon
//	walletbridge chain ls
func chainCommand(cr chainregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "chain",
		Description: "Manage the registry of known chains.",
		Usage:       "walletbridge chain [add|rm|ls] [flags]",
		Commands: []*cli.Command{
			addChainCommand(cr),
			removeChainCommand(cr),
			listChainsCommand(cr),
		},
	}
}

// addChainCommand registers a chain, mirroring the wallet_addEthereumChain
// parameter shape.
func addChainCommand(cr chainregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "add",
		Description: "Register a chain with the same metadata wallet_addEthereumChain carries.",
		Usage:       "Registers a chain. Network, chain id, name, currency, and at least one RPC URL are required.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "network",
				Usage:    "Registry key for the chain (e.g. polygon)",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "chain-id",
				Usage:    "Numeric chain identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Human-readable chain name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "currency-name",
				Usage:    "Native currency name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "currency-symbol",
				Usage:    "Native currency symbol",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "currency-decimals",
				Usage: "Native currency decimals",
				Value: 18,
			},
			&cli.StringSliceFlag{
				Name:     "rpc-url",
				Usage:    "RPC endpoint for the chain; repeat for fallbacks",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "explorer-url",
				Usage: "Block explorer URL; repeat for alternates",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cr.Register(ctx, chainregistry.Chain{
				Network: c.String("network"),
				ChainID: int64(c.Int("chain-id")),
				Name:    c.String("name"),
				Currency: chainregistry.Currency{
					Name:     c.String("currency-name"),
					Symbol:   c.String("currency-symbol"),
					Decimals: int(c.Int("currency-decimals")),
				},
				RPCURLs:           c.StringSlice("rpc-url"),
				BlockExplorerURLs: c.StringSlice("explorer-url"),
			})
		},
	}
}

// removeChainCommand unregisters a chain by network name.
func removeChainCommand(cr chainregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "rm",
		Description: "Unregister a chain from the registry.",
		Usage:       "Removes the chain stored under the given network name.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "network",
				Usage:    "Registry key of the chain to remove",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cr.Unregister(ctx, c.String("network"))
		},
	}
}

// listChainsCommand prints every registered chain.
func listChainsCommand(cr chainregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "ls",
		Description: "List every registered chain.",
		Usage:       "Prints the registered chains as JSON.",
		Action: func(ctx context.Context, c *cli.Command) error {
			chains, err := cr.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(chains)
		},
	}
}
