package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchReturnsImmediately(t *testing.T) {
	d := New(0)
	release := make(chan struct{})
	done := make(chan struct{})

	start := time.Now()
	d.Dispatch("slow", func(ctx context.Context) {
		<-release
		close(done)
	})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("dispatch blocked for %v", elapsed)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("work unit never ran")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := New(0)
	var after atomic.Bool
	done := make(chan struct{})

	d.Dispatch("panicky", func(ctx context.Context) {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("panicking unit never ran")
	}

	// A later dispatch still works after a recovered panic.
	d.Dispatch("after", func(ctx context.Context) {
		after.Store(true)
	})
	deadline := time.Now().Add(time.Second)
	for !after.Load() {
		if time.Now().After(deadline) {
			t.Fatalf("dispatch after panic never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatchHonorsConcurrencyCap(t *testing.T) {
	d := New(2)

	var mu sync.Mutex
	running, peak := 0, 0
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		d.Dispatch("capped", func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	wg.Wait()

	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent units, saw %d", peak)
	}
}
