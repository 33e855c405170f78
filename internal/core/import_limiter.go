package core

// import_limiter.go bounds how many imports run at once.
//
// Parsing holds the whole workbook in memory and saving holds a database
// transaction, so parallel imports are capped. When every slot is taken a
// caller waits up to maxWait and then gets ErrTooManyImports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when all import slots stay occupied for
// longer than the limiter's wait time.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports is used when a non-positive limit is given.
const DefaultMaxConcurrentImports = 4

// DefaultMaxWaitTime is used when a non-positive wait is given.
const DefaultMaxWaitTime = 10 * time.Second

// drainPollInterval is how often WaitForDrain re-checks the active count.
const drainPollInterval = 50 * time.Millisecond

// ImportLimiter is a counting semaphore for import operations.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows at most maxConcurrent imports at once.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most the configured wait time.
// The caller must call Release once the import finishes.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of imports currently holding a slot.
func (l *ImportLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the maximum number of concurrent imports.
func (l *ImportLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	if l.Active() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}
