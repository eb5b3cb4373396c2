package provider

import (
	"context"
	"errors"
	"time"
)

// waitConfig holds the optional parameters of a confirmation wait.
type waitConfig struct {
	timeout time.Duration
}

// WaitOption customizes a WaitForTransaction call.
type WaitOption func(*waitConfig)

// WithWaitTimeout bounds the whole wait. When the deadline elapses before
// the transaction reaches the requested depth, WaitForTransaction returns a
// *TimeoutError carrying the last known state.
func WithWaitTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = d
	}
}

// WaitForTransaction polls for the transaction identified by hash to reach a
// confirmation depth of at least confirms blocks, where depth is
// currentBlock − minedBlock + 1.
//
// With confirms = 0 and no receipt yet, it returns (nil, nil) immediately:
// "not yet mined" is an explicit result on the fast path, not an error.
// Otherwise it keeps polling at the provider's poll interval until the depth
// is reached, the configured timeout elapses (*TimeoutError), or ctx is
// canceled (ctx.Err(), with no further polling).
func (p *Provider) WaitForTransaction(ctx context.Context, hash string, confirms int64, opts ...WaitOption) (*TransactionReceipt, error) {
	cfg := waitConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	var (
		mined bool
		depth int64
	)

	timedOut := func() (*TransactionReceipt, error) {
		// Only our own deadline converts into a TimeoutError; caller-side
		// cancellation stays a plain context error.
		if cfg.timeout > 0 && errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &TimeoutError{Hash: hash, Mined: mined, Confirmations: depth}
		}
		return nil, ctx.Err()
	}

	for {
		var receipt *TransactionReceipt
		err := p.fetchWithRetry(waitCtx, func() (err error) {
			receipt, err = p.TransactionReceipt(waitCtx, hash)
			return err
		})
		if err != nil {
			if waitCtx.Err() != nil {
				return timedOut()
			}
			return nil, err
		}

		if receipt == nil {
			if confirms <= 0 {
				return nil, nil
			}
		} else {
			mined = true

			var head int64
			err := p.fetchWithRetry(waitCtx, func() (err error) {
				head, err = p.BlockNumber(waitCtx)
				return err
			})
			if err != nil {
				if waitCtx.Err() != nil {
					return timedOut()
				}
				return nil, err
			}

			depth = head - receipt.BlockNumber + 1
			if depth >= confirms {
				return receipt, nil
			}
		}

		select {
		case <-waitCtx.Done():
			return timedOut()
		case <-time.After(p.pollInterval):
		}
	}
}
