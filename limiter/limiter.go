// Package limiter paces requests to one provider and honours the pauses it
// asks for with Retry-After. A requested pause is written to a file, so a
// restarted process keeps waiting instead of hammering a provider that
// already told it to back off.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBackoff is used when a provider rate-limits without saying for how
// long.
const DefaultBackoff = time.Minute

func New(filename string, delay time.Duration) *Limiter {
	return &Limiter{
		filename: filename,
		delay:    delay,
	}
}

type Limiter struct {
	mu sync.Mutex

	// Empty means pauses aren't persisted.
	filename string
	delay    time.Duration
	nextAt   time.Time
}

// Load reads a pause left behind by an earlier process, if any.
func (lim *Limiter) Load() error {
	if lim.filename == "" {
		return nil
	}

	bs, err := os.ReadFile(lim.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error reading retry state '%s': %w", lim.filename, err)
	}

	nextAt, err := time.Parse(time.UnixDate, strings.TrimSpace(string(bs)))
	if err != nil {
		return fmt.Errorf("error parsing retry state '%s': %w", lim.filename, err)
	}

	lim.mu.Lock()
	defer lim.mu.Unlock()
	if nextAt.After(lim.nextAt) {
		lim.nextAt = nextAt
	}
	return nil
}

// NextAt is when the next request may go out.
func (lim *Limiter) NextAt() time.Time {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	return lim.nextAt
}

// Wait blocks until the next request may go out, or ctx is done.
func (lim *Limiter) Wait(ctx context.Context) error {
	nextAt := lim.NextAt()
	dur := time.Until(nextAt)
	if dur <= 0 {
		return nil
	}
	if dur > time.Second {
		slog.Info("waiting for rate limit",
			"for", dur.Truncate(time.Second),
			"until", nextAt.Format(time.StampMilli))
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("canceled: %w", ctx.Err())
	case <-timer.C:
	}

	if lim.filename != "" {
		if err := os.Remove(lim.filename); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error clearing retry state '%s': %w", lim.filename, err)
		}
	}
	return nil
}

// Backoff records a Retry-After value, in seconds, from a rate-limited
// response. An empty value means DefaultBackoff. It returns how long the
// pause is.
func (lim *Limiter) Backoff(retryAfter string) (time.Duration, error) {
	wait := DefaultBackoff
	if retryAfter = strings.TrimSpace(retryAfter); retryAfter != "" {
		seconds, err := strconv.ParseInt(retryAfter, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("error parsing Retry-After '%s': %w", retryAfter, err)
		}
		wait = time.Duration(seconds)*time.Second + time.Second
	}

	nextAt := time.Now().Add(wait)

	lim.mu.Lock()
	if nextAt.After(lim.nextAt) {
		lim.nextAt = nextAt
	}
	lim.mu.Unlock()

	if lim.filename != "" {
		if err := os.WriteFile(lim.filename, []byte(nextAt.Format(time.UnixDate)), 0666); err != nil {
			return wait, fmt.Errorf("error writing retry state '%s': %w", lim.filename, err)
		}
	}
	return wait, nil
}

// Delay spaces the next request by the limiter's delay.
func (lim *Limiter) Delay() {
	lim.DelayBy(lim.delay)
}

// DelayBy spaces the next request by d, unless a longer pause is already
// pending.
func (lim *Limiter) DelayBy(d time.Duration) {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	if nextAt := time.Now().Add(d); nextAt.After(lim.nextAt) {
		lim.nextAt = nextAt
	}
}
