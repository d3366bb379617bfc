package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when every import slot stays occupied for
// the whole queue timeout.
var ErrTooManyImports = errors.New("too many uploads in progress, please try again later")

const (
	// DefaultMaxConcurrentImports bounds parallel imports per process.
	DefaultMaxConcurrentImports = 5

	// DefaultQueueTimeout is how long an import waits for a free slot.
	DefaultQueueTimeout = 30 * time.Second
)

// ImportLimiter bounds concurrent imports with a counting semaphore.
type ImportLimiter struct {
	slots   chan struct{}
	timeout time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows max concurrent imports, queueing others for up
// to timeout. Non-positive arguments select the defaults.
func NewImportLimiter(max int, timeout time.Duration) *ImportLimiter {
	if max <= 0 {
		max = DefaultMaxConcurrentImports
	}
	if timeout <= 0 {
		timeout = DefaultQueueTimeout
	}
	return &ImportLimiter{slots: make(chan struct{}, max), timeout: timeout}
}

// Acquire waits for a slot and returns the function that frees it.
// The release function is safe to call more than once.
func (l *ImportLimiter) Acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-timer.C:
		return nil, ErrTooManyImports
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.active.Add(1)
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			l.active.Add(-1)
			<-l.slots
		}
	}, nil
}

// Active returns the number of imports holding a slot.
func (l *ImportLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the maximum number of concurrent imports.
func (l *ImportLimiter) Capacity() int {
	return cap(l.slots)
}

// Drain blocks until no import holds a slot or ctx ends.
// Used during graceful shutdown.
func (l *ImportLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
