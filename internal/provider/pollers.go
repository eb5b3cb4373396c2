package provider

import (
	"context"
	"time"

	"github.com/gabapcia/walletbridge/internal/pkg/logger"
)

// fetchWithRetry runs fn, applying the configured retry policy to transient
// failures when one was supplied at construction.
func (p *Provider) fetchWithRetry(ctx context.Context, fn func() error) error {
	if p.retrier == nil {
		return fn()
	}
	return p.retrier.Execute(ctx, fn)
}

// runBlockPoller feeds the "block" event key. It baselines on the first
// successful head fetch, then emits every new block number exactly once, in
// order, until ctx is canceled.
func (p *Provider) runBlockPoller(ctx context.Context) {
	var last int64 = -1

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.pollInterval):
		}

		var head int64
		err := p.fetchWithRetry(ctx, func() (err error) {
			head, err = p.BlockNumber(ctx)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "head poll failed", "error", err)
			continue
		}

		if last < 0 {
			last = head
			continue
		}

		for n := last + 1; n <= head; n++ {
			p.events.emit(ctx, EventBlock, n)
		}
		if head > last {
			last = head
		}
	}
}

// runLogPoller feeds a filter-keyed subscription. Each round it queries the
// block range mined since the previous round and emits every matching log in
// order.
func (p *Provider) runLogPoller(ctx context.Context, key string, q FilterQuery) {
	var last int64 = -1

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.pollInterval):
		}

		var head int64
		err := p.fetchWithRetry(ctx, func() (err error) {
			head, err = p.BlockNumber(ctx)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "log poll failed", "filter.key", key, "error", err)
			continue
		}

		if last < 0 {
			last = head
			continue
		}
		if head <= last {
			continue
		}

		ranged := q
		ranged.FromBlock = BlockNumberTag(last + 1)
		ranged.ToBlock = BlockNumberTag(head)

		var logs []Log
		err = p.fetchWithRetry(ctx, func() (err error) {
			logs, err = p.Logs(ctx, ranged)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "log poll failed", "filter.key", key, "error", err)
			continue
		}

		for _, log := range logs {
			p.events.emit(ctx, key, log)
		}
		last = head
	}
}
