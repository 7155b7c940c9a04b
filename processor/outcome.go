package processor

import (
	"context"
	"errors"
)

// ErrAsyncPlugin is returned when a result is read synchronously but a
// plugin deferred its work. Use LazyResult.Async instead.
var ErrAsyncPlugin = errors.New("use process(css).Async(ctx) to work with async plugins")

// Outcome is what a hook returns: either an immediate result or deferred
// work that the pipeline awaits before moving on to the next plugin.
type Outcome struct {
	err  error
	wait func(ctx context.Context) error
}

// Done returns an immediate outcome. A nil err means success.
func Done(err error) Outcome { return Outcome{err: err} }

// Async returns a deferred outcome. fn runs once, when the pipeline awaits it,
// and must not be called by anything else.
func Async(fn func(ctx context.Context) error) Outcome {
	return Outcome{wait: fn}
}

// Await returns a deferred outcome resolved by the first value received
// from ch.
func Await(ch <-chan error) Outcome {
	return Async(func(ctx context.Context) error {
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Deferred reports whether the outcome must be awaited.
func (o Outcome) Deferred() bool { return o.wait != nil }

// Err returns the error of an immediate outcome.
func (o Outcome) Err() error { return o.err }

// Wait resolves the outcome.
func (o Outcome) Wait(ctx context.Context) error {
	if o.wait == nil {
		return o.err
	}
	return o.wait(ctx)
}

// sequence runs steps in order until one fails or defers. A deferred step
// yields an outcome that awaits it and then continues with the remaining
// steps.
func sequence(steps []func() Outcome) Outcome {
	for i, step := range steps {
		o := step()
		if o.Deferred() {
			rest := steps[i+1:]
			return Async(func(ctx context.Context) error {
				if err := o.Wait(ctx); err != nil {
					return err
				}
				return sequence(rest).Wait(ctx)
			})
		}
		if o.err != nil {
			return o
		}
	}
	return Done(nil)
}
