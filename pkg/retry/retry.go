package retry

import (
	"context"
	"errors"
	"log"
	"time"
)

// Config controls retry behavior. Waits grow linearly: Base + attempt*Step,
// capped at MaxWait when MaxWait > 0.
type Config struct {
	MaxAttempts int
	Base        time.Duration
	Step        time.Duration
	MaxWait     time.Duration
	Name        string
}

// permanentError stops Do from trying again.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Wait returns the delay applied after the given failed attempt (1-based).
func (c Config) Wait(attempt int) time.Duration {
	wait := c.Base + time.Duration(attempt)*c.Step
	if c.MaxWait > 0 && wait > c.MaxWait {
		wait = c.MaxWait
	}
	return wait
}

// Do calls fn up to MaxAttempts times. It returns immediately on success,
// on a Permanent error or when ctx is done.
func Do[T any](ctx context.Context, c Config, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if IsPermanent(err) {
			var p *permanentError
			errors.As(err, &p)
			return zero, p.err
		}

		if attempt < attempts {
			wait := c.Wait(attempt)
			log.Printf("[Retry] %s: tentativa %d/%d falhou: %v (aguardando %v)", c.Name, attempt, attempts, err, wait)
			if err := Sleep(ctx, wait); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
