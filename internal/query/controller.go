// Package query coordinates the parallel data fetches behind a report
// page and tracks their combined lifecycle.
//
// Every page render starts Loading, launches all of its backend calls at
// once, and settles exactly once: Ready when every fetch succeeded, Failed
// with the first error otherwise. A canceled request never settles — its
// results are discarded and no commit runs after cancellation.
package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Phase is the lifecycle state of a page load.
type Phase int

const (
	Loading Phase = iota
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Controller runs a group of fetchers for one request and owns the
// resulting phase. It is bound to the request context: once that context
// is done, results are stale and are never committed.
type Controller struct {
	ctx context.Context

	mu    sync.Mutex
	phase Phase
	err   error
}

// NewController creates a controller in the Loading phase, bound to ctx.
func NewController(ctx context.Context) *Controller {
	return &Controller{ctx: ctx, phase: Loading}
}

// Commit runs fn under the controller lock unless the bound context is
// already done. It reports whether fn ran. Fetchers use it to publish
// results so a late response can never clobber state after cancellation.
func (c *Controller) Commit(fn func()) bool {
	if c.ctx.Err() != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	return true
}

// Load runs every fetcher concurrently and waits for all of them. The
// phase becomes Ready only if all succeed; the first failure wins and the
// rest are canceled. If the bound context was canceled, the controller
// stays Loading.
func (c *Controller) Load(fetchers ...func(ctx context.Context) error) {
	g, gctx := errgroup.WithContext(c.ctx)
	for _, fetch := range fetchers {
		g.Go(func() error {
			return fetch(gctx)
		})
	}
	err := g.Wait()

	if c.ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = Failed
		c.err = err
		return
	}
	c.phase = Ready
}

// Phase returns the settled (or current) phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the error that failed the load, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Fetch adapts a typed fetch function into a fetcher that commits its
// result into dst. The write happens through Commit, so it is dropped if
// the request was canceled in the meantime.
func Fetch[T any](c *Controller, dst *T, fn func(ctx context.Context) (T, error)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		c.Commit(func() { *dst = v })
		return nil
	}
}
