package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Class buckets an error for the retry decision. Only network and server
// failures are retried; auth and permission failures must surface immediately
// so access-control problems are never masked as flakiness.
type Class int

const (
	ClassUnknown Class = iota
	ClassNetwork
	ClassAuth
	ClassPermission
	ClassServer
)

func (c Class) String() string {
	switch c {
	case ClassNetwork:
		return "network"
	case ClassAuth:
		return "auth"
	case ClassPermission:
		return "permission"
	case ClassServer:
		return "server"
	default:
		return "unknown"
	}
}

func (c Class) Retryable() bool {
	return c == ClassNetwork || c == ClassServer
}

// Classifier maps an error to a Class. A nil classifier treats every error as
// ClassUnknown (not retried).
type Classifier func(error) Class

type Policy struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	AttemptTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialDelay:   250 * time.Millisecond,
		AttemptTimeout: 10 * time.Second,
	}
}

// Do runs fn with bounded exponential backoff and jitter. Each attempt gets
// its own timeout derived from ctx. The final error is returned unwrapped so
// callers can match sentinel errors with errors.Is.
func Do(ctx context.Context, policy Policy, classify Classifier, fn func(context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = 250 * time.Millisecond
	}

	backoff := retry.NewExponential(policy.InitialDelay)
	backoff = retry.WithJitterPercent(10, backoff)
	backoff = retry.WithMaxRetries(uint64(policy.MaxAttempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx := ctx
		if policy.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
			defer cancel()
		}

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}

		class := ClassUnknown
		if classify != nil {
			class = classify(err)
		}
		if class.Retryable() {
			return retry.RetryableError(err)
		}
		return err
	})
}
