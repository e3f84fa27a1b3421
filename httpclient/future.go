package httpclient

import (
	"context"
	"sync/atomic"
)

const (
	futurePending int32 = iota
	futureSettling
	futureCompleted
	futureFailed
	futureCancelled
)

// Callback receives the terminal signal of an async request. Exactly one
// hook fires per request; nil hooks are skipped. Cancelled fires both for
// Future.Cancel and for a request stopped by the cancellation of its parent
// context.
type Callback[T any] struct {
	Completed func(*Response[T])
	Failed    func(error)
	Cancelled func()
}

// Future is the handle of an async request. It settles exactly once, as
// completed, failed or cancelled.
type Future[T any] struct {
	state  atomic.Int32
	done   chan struct{}
	cancel context.CancelFunc
	cb     *Callback[T]

	resp *Response[T]
	err  error
}

func newFuture[T any](cancel context.CancelFunc, cb *Callback[T]) *Future[T] {
	return &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
		cb:     cb,
	}
}

// settle records the outcome unless the future already settled. It
// reports whether this call won.
func (f *Future[T]) settle(resp *Response[T], err error) bool {
	if !f.state.CompareAndSwap(futurePending, futureSettling) {
		return false
	}
	f.resp, f.err = resp, err
	cancelled := err != nil && IsCancelled(err)
	switch {
	case cancelled:
		f.state.Store(futureCancelled)
	case err != nil:
		f.state.Store(futureFailed)
	default:
		f.state.Store(futureCompleted)
	}
	close(f.done)

	if f.cb == nil {
		return true
	}
	switch {
	case cancelled:
		if f.cb.Cancelled != nil {
			f.cb.Cancelled()
		}
	case err != nil:
		if f.cb.Failed != nil {
			f.cb.Failed(err)
		}
	case f.cb.Completed != nil:
		f.cb.Completed(resp)
	}
	return true
}

// Cancel stops the request if it has not settled yet. A response that
// arrives afterwards is discarded. It reports whether this call cancelled
// the request.
func (f *Future[T]) Cancel() bool {
	if !f.state.CompareAndSwap(futurePending, futureCancelled) {
		return false
	}
	f.err = NewCancelledError(context.Canceled)
	if f.cancel != nil {
		f.cancel()
	}
	close(f.done)

	if f.cb != nil && f.cb.Cancelled != nil {
		f.cb.Cancelled()
	}
	return true
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get waits for the outcome. A cancelled future returns an error for which
// IsCancelled is true. If ctx ends first, Get returns its error and the
// request keeps running.
func (f *Future[T]) Get(ctx context.Context) (*Response[T], error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsDone reports whether the future settled.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the future was cancelled, either with Cancel
// or through its parent context.
func (f *Future[T]) IsCancelled() bool {
	return f.state.Load() == futureCancelled
}
