package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Capacity(); got != 2 {
		t.Errorf("Capacity() = %d, want 2", got)
	}

	release1, err := limiter.Acquire(ctx)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	release2, err := limiter.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.Active(); got != 2 {
		t.Errorf("Active() = %d, want 2", got)
	}

	release1()
	release1()
	if got := limiter.Active(); got != 1 {
		t.Errorf("after double release, Active() = %d, want 1", got)
	}
	release2()
	if got := limiter.Active(); got != 0 {
		t.Errorf("Active() = %d, want 0", got)
	}
}

func TestImportLimiter_Timeout(t *testing.T) {
	limiter := NewImportLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	release, err := limiter.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	if _, err := limiter.Acquire(ctx); !errors.Is(err, ErrTooManyImports) {
		t.Errorf("Acquire() error = %v, want ErrTooManyImports", err)
	}
}

func TestImportLimiter_ContextCancelled(t *testing.T) {
	limiter := NewImportLimiter(1, time.Minute)
	release, _ := limiter.Acquire(context.Background())
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestImportLimiter_QueuedAcquireProceeds(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	release, _ := limiter.Acquire(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var got error
	go func() {
		defer wg.Done()
		r, err := limiter.Acquire(context.Background())
		got = err
		if err == nil {
			r()
		}
	}()

	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	if got != nil {
		t.Errorf("queued Acquire() error = %v", got)
	}
}

func TestImportLimiter_Drain(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	release, _ := limiter.Acquire(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.Drain(ctx); err != nil {
		t.Errorf("Drain() error = %v", err)
	}
}
