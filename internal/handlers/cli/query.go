package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/walletbridge/internal/provider"

	"github.com/urfave/cli/v3"
)

// printJSON renders a command result for the terminal.
func printJSON(v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(body))
	return nil
}

// blockTagArg converts the --block flag value into the optional block tag
// argument list. An unset flag yields no argument at all, preserving the
// transport's own default instead of forcing "latest".
func blockTagArg(c *cli.Command) []provider.BlockTag {
	if tag := c.String("block"); tag != "" {
		return []provider.BlockTag{provider.BlockTag(tag)}
	}
	return nil
}

// balanceCommand returns a CLI command reporting an address's wei balance.
//
// Usage example:
//
//	walletbridge balance --address 0xABC123... [--block latest]
func balanceCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "balance",
		Description: "Fetch the wei balance of an address, optionally pinned to a block tag.",
		Usage:       "Prints the balance as an arbitrary-precision integer.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Account address to query",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "block",
				Usage: "Block tag (number, \"latest\", \"pending\"); omitted from the request when unset",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			balance, err := p.Balance(ctx, c.String("address"), blockTagArg(c)...)
			if err != nil {
				return err
			}

			fmt.Println(balance.String())
			return nil
		},
	}
}

// nonceCommand returns a CLI command reporting an address's transaction count.
func nonceCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "nonce",
		Description: "Fetch the transaction count (nonce) of an address.",
		Usage:       "Prints the nonce as an integer.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Account address to query",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "block",
				Usage: "Block tag; omitted from the request when unset",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			nonce, err := p.TransactionCount(ctx, c.String("address"), blockTagArg(c)...)
			if err != nil {
				return err
			}

			fmt.Println(nonce)
			return nil
		},
	}
}

// blockCommand returns a CLI command fetching a block by tag.
func blockCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "block",
		Description: "Fetch a block by tag, with transaction hashes or full transaction records.",
		Usage:       "Prints the block as JSON.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Block tag (number, \"latest\", \"pending\")",
				Value: string(provider.BlockLatest),
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Materialize full transaction records instead of hashes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			tag := provider.BlockTag(c.String("tag"))

			if c.Bool("full") {
				block, err := p.BlockWithTransactionsByNumber(ctx, tag)
				if err != nil {
					return err
				}
				if block == nil {
					fmt.Println("block not found")
					return nil
				}
				return printJSON(block)
			}

			block, err := p.BlockByNumber(ctx, tag)
			if err != nil {
				return err
			}
			if block == nil {
				fmt.Println("block not found")
				return nil
			}
			return printJSON(block)
		},
	}
}

// transactionCommand returns a CLI command fetching a transaction by hash.
func transactionCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "tx",
		Description: "Fetch a transaction by hash.",
		Usage:       "Prints the transaction as JSON, or reports that it is unknown.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "Transaction hash",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			tx, err := p.TransactionByHash(ctx, c.String("hash"))
			if err != nil {
				return err
			}
			if tx == nil {
				fmt.Println("transaction not found")
				return nil
			}
			return printJSON(tx)
		},
	}
}

// receiptCommand returns a CLI command fetching a transaction receipt.
func receiptCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "receipt",
		Description: "Fetch the receipt of a mined transaction.",
		Usage:       "Prints the receipt as JSON, or reports that the transaction is not yet mined.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "Transaction hash",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			receipt, err := p.TransactionReceipt(ctx, c.String("hash"))
			if err != nil {
				return err
			}
			if receipt == nil {
				fmt.Println("transaction not yet mined")
				return nil
			}
			return printJSON(receipt)
		},
	}
}

// logsCommand returns a CLI command running a one-shot log filter query.
func logsCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "logs",
		Description: "Query logs matching an address and ordered topic list within a block range.",
		Usage:       "Prints the matching logs as JSON.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Contract address to filter by",
			},
			&cli.StringSliceFlag{
				Name:  "topic",
				Usage: "Topic filter, positionally ordered; repeat for multiple topics",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Start block tag",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "End block tag",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logs, err := p.Logs(ctx, provider.FilterQuery{
				Address:   c.String("address"),
				Topics:    c.StringSlice("topic"),
				FromBlock: provider.BlockTag(c.String("from")),
				ToBlock:   provider.BlockTag(c.String("to")),
			})
			if err != nil {
				return err
			}
			return printJSON(logs)
		},
	}
}

// gasPriceCommand returns a CLI command reporting the current gas price.
func gasPriceCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "gas-price",
		Description: "Fetch the current gas price in wei.",
		Usage:       "Prints the gas price as an arbitrary-precision integer.",
		Action: func(ctx context.Context, c *cli.Command) error {
			price, err := p.GasPrice(ctx)
			if err != nil {
				return err
			}

			fmt.Println(price.String())
			return nil
		},
	}
}

// chainIDCommand returns a CLI command reporting the connected network.
func chainIDCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "chain-id",
		Description: "Fetch the chain id and known network metadata.",
		Usage:       "Prints the network snapshot as JSON.",
		Action: func(ctx context.Context, c *cli.Command) error {
			network, err := p.Network(ctx)
			if err != nil {
				return err
			}
			return printJSON(network)
		},
	}
}
