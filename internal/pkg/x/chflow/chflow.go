// Package chflow provides context-aware helpers for sending to and receiving
// from Go channels, so channel operations respect cancellation and deadlines.
package chflow

import "context"

// Receive waits for a value from ch or for ctx to be canceled. It returns the
// received value and true on success, or the zero value and false when the
// context ended or the channel was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send attempts to deliver data to ch unless ctx is canceled first.
// It reports whether the send happened.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
