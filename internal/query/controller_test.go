package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoad_AllSucceed(t *testing.T) {
	c := NewController(context.Background())

	var a, b int
	c.Load(
		Fetch(c, &a, func(ctx context.Context) (int, error) { return 1, nil }),
		Fetch(c, &b, func(ctx context.Context) (int, error) { return 2, nil }),
	)

	if c.Phase() != Ready {
		t.Fatalf("phase = %v, want Ready", c.Phase())
	}
	if a != 1 || b != 2 {
		t.Errorf("results = (%d, %d), want (1, 2)", a, b)
	}
}

func TestLoad_RunsFetchersConcurrently(t *testing.T) {
	c := NewController(context.Background())

	// Two fetchers that each wait for the other to start. If Load ran
	// them sequentially this would deadlock until the test timeout.
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var done int32

	fetcher := func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
			atomic.AddInt32(&done, 1)
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("timed out waiting for peer")
		}
	}

	go func() {
		<-started
		<-started
		close(release)
	}()

	c.Load(fetcher, fetcher)

	if c.Phase() != Ready {
		t.Fatalf("phase = %v, want Ready (err: %v)", c.Phase(), c.Err())
	}
	if atomic.LoadInt32(&done) != 2 {
		t.Errorf("done = %d, want 2", done)
	}
}

func TestLoad_FirstErrorWins(t *testing.T) {
	c := NewController(context.Background())

	errBoom := errors.New("backend unavailable")
	var slow string

	c.Load(
		func(ctx context.Context) error { return errBoom },
		Fetch(c, &slow, func(ctx context.Context) (string, error) {
			// Canceled by the group once the sibling fails.
			<-ctx.Done()
			return "", ctx.Err()
		}),
	)

	if c.Phase() != Failed {
		t.Fatalf("phase = %v, want Failed", c.Phase())
	}
	if !errors.Is(c.Err(), errBoom) {
		t.Errorf("Err() = %v, want %v", c.Err(), errBoom)
	}
}

func TestLoad_CanceledRequestStaysLoading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(ctx)

	var got int
	c.Load(func(fctx context.Context) error {
		cancel()
		<-fctx.Done()
		// Simulate a response arriving after cancellation: the commit
		// must be discarded.
		if c.Commit(func() { got = 99 }) {
			t.Error("Commit() ran after cancellation")
		}
		return fctx.Err()
	})

	if c.Phase() != Loading {
		t.Errorf("phase = %v, want Loading", c.Phase())
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
	if got != 0 {
		t.Errorf("got = %d, want 0 (stale write committed)", got)
	}
}

func TestCommit_AfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController(ctx)

	if ok := c.Commit(func() {}); !ok {
		t.Error("Commit() = false before cancel, want true")
	}
	cancel()
	if ok := c.Commit(func() {}); ok {
		t.Error("Commit() = true after cancel, want false")
	}
}
