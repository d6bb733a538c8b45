package clock

//go:generate mockgen -destination=mock/mock_clock.go -package=mockclock -source=clock.go

import (
	"context"
	"time"
)

// Clock abstracts time so animation delays can be controlled in tests
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first.
	// Returns ctx.Err() when the context ended the wait early.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// NewRealClock creates a system-backed clock
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is cancelled
func (c *RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
