package service

// limiter.go implements concurrency control for read processing.
//
// Reads buffer and convert whole files, so the limiter restricts parallel
// reads to a configurable maximum. When all slots are occupied, new requests
// wait up to maxWait before failing with ErrTooManyReads.
//
// WaitForDrain blocks until all active reads complete, for graceful shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyReads is returned when all read slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyReads = errors.New("too many concurrent reads, please try again later")

// DefaultMaxConcurrentReads is the default limit for parallel reads.
const DefaultMaxConcurrentReads = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ReadLimiter controls concurrent reads using a semaphore.
type ReadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewReadLimiter creates a limiter that allows at most maxConcurrent
// simultaneous reads. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyReads.
func NewReadLimiter(maxConcurrent int, maxWait time.Duration) *ReadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentReads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ReadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a read slot. The caller MUST call Release when the read
// completes (use defer).
func (l *ReadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Original context cancelled vs wait timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyReads
	}
}

// TryAcquire acquires a slot without blocking and reports whether it did.
func (l *ReadLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *ReadLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of reads in progress.
func (l *ReadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active reads complete or ctx is cancelled.
func (l *ReadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *ReadLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
