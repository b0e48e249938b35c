// Package retry wraps fallible provider calls in a bounded retry loop
// specialized for rate-limit errors. Classification is injected; the
// executor never decides on its own what counts as transient.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Config bounds one wrapped call. It is supplied per call and never
// mutated by the executor.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Zero means the first rate-limit error fails immediately.
	MaxRetries int

	// Sleep is the wait between attempts.
	Sleep time.Duration

	// OperationName labels log output.
	OperationName string
}

// Classifier reports whether an error is a transient rate-limit error
// worth retrying. Everything else fails fast.
type Classifier func(error) bool

// OnRetry is invoked before each sleep with the 1-based retry attempt and
// the wait duration. Used to push progress updates; may be nil.
type OnRetry func(attempt int, wait time.Duration)

// Executor runs operations under the rate-limit retry policy.
type Executor struct {
	log         *zap.Logger
	isRateLimit Classifier
}

// NewExecutor creates an Executor with the given logger and classifier.
func NewExecutor(log *zap.Logger, isRateLimit Classifier) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{log: log, isRateLimit: isRateLimit}
}

// decision is the tagged outcome of classifying one attempt. Making the
// transition explicit keeps the loop terminating by construction instead
// of relying on control flow through error propagation.
type decision int

const (
	decisionDone decision = iota
	decisionFail
	decisionExhausted
	decisionRetry
)

// classify maps an attempt's error to the next state transition. attempts
// counts rate-limit failures observed before this attempt.
func (e *Executor) classify(err error, attempts int, cfg Config) decision {
	switch {
	case err == nil:
		return decisionDone
	case !e.isRateLimit(err):
		return decisionFail
	case attempts+1 > cfg.MaxRetries:
		return decisionExhausted
	default:
		return decisionRetry
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// exhausts cfg.MaxRetries rate-limit retries. The original error crosses
// the boundary unchanged so callers can match on it exactly as if no
// wrapper were present. The inter-attempt sleep is cooperative: it
// honors ctx, and cancellation surfaces ctx.Err().
func Do[T any](ctx context.Context, e *Executor, cfg Config, op func(context.Context) (T, error), onRetry OnRetry) (T, error) {
	var zero T
	attempts := 0

	for {
		v, err := op(ctx)

		switch e.classify(err, attempts, cfg) {
		case decisionDone:
			return v, nil

		case decisionFail:
			return zero, err

		case decisionExhausted:
			attempts++
			e.log.Warn("rate limit retries exhausted",
				zap.String("operation", cfg.OperationName),
				zap.Int("attempts", attempts),
				zap.Int("max_retries", cfg.MaxRetries))
			return zero, err

		case decisionRetry:
			attempts++
			wait := cfg.Sleep
			e.log.Warn("rate limited, backing off",
				zap.String("operation", cfg.OperationName),
				zap.Int("attempt", attempts),
				zap.Int("wait_seconds", int(wait.Round(time.Second).Seconds())))

			if onRetry != nil {
				onRetry(attempts, wait)
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
}
