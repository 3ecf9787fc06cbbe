package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome classifies a dashboard built from several independent fetches.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
)

// ErrorUnavailable is the only error text clients see for a failed section.
// The cause stays in Err and the server log.
const ErrorUnavailable = "unavailable"

// Result holds one sub-fetch.
type Result[T any] struct {
	Value T      `json:"value"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func newResult[T any](value T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Err: err, Error: ErrorUnavailable}
	}
	return Result[T]{Value: value}
}

type fetchResult interface {
	OK() bool
}

func classify(results ...fetchResult) Outcome {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	switch {
	case failed == 0:
		return OutcomeComplete
	case failed == len(results):
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// fanout runs independent fetches concurrently. A failing fetch is recorded
// in its own Result and never cancels its siblings.
type fanout struct {
	ctx     context.Context
	group   errgroup.Group
	timeout time.Duration
	name    string
}

func newFanout(ctx context.Context, name string, timeout time.Duration) *fanout {
	return &fanout{ctx: ctx, timeout: timeout, name: name}
}

func fetch[T any](f *fanout, part string, dst *Result[T], fn func(context.Context) (T, error)) {
	f.group.Go(func() error {
		ctx := f.ctx
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		value, err := fn(ctx)
		if err != nil {
			slog.Warn("dashboard fetch failed", "dashboard", f.name, "part", part, "err", err)
		}
		*dst = newResult(value, err)
		return nil
	})
}

func (f *fanout) wait() {
	_ = f.group.Wait()
}
