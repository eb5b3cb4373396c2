package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/walletbridge/internal/pkg/x/chflow"
	"github.com/gabapcia/walletbridge/internal/provider"

	"github.com/urfave/cli/v3"
)

// waitCommand returns a CLI command that blocks until a transaction reaches
// the requested confirmation depth.
//
// Usage example:
//
//	walletbridge wait --hash 0xABC123... --confirms 3 --timeout 2m
func waitCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "wait",
		Description: "Wait for a transaction to reach a confirmation depth, with an optional deadline.",
		Usage:       "Prints the receipt once confirmed; distinguishes unmined from under-confirmed on timeout.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "Transaction hash to track",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "confirms",
				Usage: "Required confirmation depth; 0 checks once without blocking",
				Value: 1,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this duration (0 waits indefinitely)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var opts []provider.WaitOption
			if timeout := c.Duration("timeout"); timeout > 0 {
				opts = append(opts, provider.WithWaitTimeout(timeout))
			}

			receipt, err := p.WaitForTransaction(ctx, c.String("hash"), int64(c.Int("confirms")), opts...)
			if err != nil {
				var timeoutErr *provider.TimeoutError
				if errors.As(err, &timeoutErr) {
					fmt.Println(timeoutErr.Error())
					return nil
				}
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

// watchCommand returns a CLI command streaming new head block numbers until
// the process receives an interrupt (SIGINT or SIGTERM).
//
// Usage example:
//
//	walletbridge watch
func watchCommand(p *provider.Provider) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Stream new head block numbers as they are mined.",
		Usage:       "Prints one block number per line. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			blocks := make(chan int64, 16)
			sub := p.OnBlock(func(blockNumber int64) {
				chflow.Send(ctx, blocks, blockNumber)
			})
			defer p.Off(sub)

			for {
				blockNumber, ok := chflow.Receive(ctx, blocks)
				if !ok {
					return nil
				}

				fmt.Printf("%s block %d\n", time.Now().Format(time.RFC3339), blockNumber)
			}
		},
	}
}
