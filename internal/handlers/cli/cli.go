// Package cli wires the walletbridge commands: typed chain queries,
// transaction waiting, block streaming, and chain registry management.
package cli

import (
	"context"
	"os"

	"github.com/gabapcia/walletbridge/internal/chainregistry"
	"github.com/gabapcia/walletbridge/internal/provider"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletbridge CLI application.
//
// Registered commands:
//
//   - `balance`, `nonce`, `block`, `tx`, `receipt`, `logs`, `gas-price`,
//     `chain-id`: one-shot typed queries against the configured node.
//   - `wait`: blocks until a transaction reaches a confirmation depth.
//   - `watch`: streams new head block numbers until interrupted.
//   - `chain add|rm|ls`: manages the chain registry.
func Run(ctx context.Context, p *provider.Provider, cr chainregistry.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletbridge",
		Description:           "Command-line interface for querying Ethereum-compatible chains through walletbridge.",
		Usage:                 "walletbridge [command] [flags]",
		Commands: []*cli.Command{
			balanceCommand(p),
			nonceCommand(p),
			blockCommand(p),
			transactionCommand(p),
			receiptCommand(p),
			logsCommand(p),
			gasPriceCommand(p),
			chainIDCommand(p),
			waitCommand(p),
			watchCommand(p),
			chainCommand(cr),
		},
	}

	return app.Run(ctx, os.Args)
}
