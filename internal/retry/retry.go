// Package retry wraps a single outbound operation with timeout-based
// cancellation and bounded backoff retry.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Kind classifies why an operation ultimately failed. The widget picks the
// user-facing error text from this.
type Kind int

const (
	// KindGeneric covers failures with no more specific classification.
	KindGeneric Kind = iota
	// KindTimeout means the per-attempt timeout cancelled the request.
	KindTimeout
	// KindServer means the backend answered with a 5xx status.
	KindServer
	// KindNetwork means the request never reached the backend.
	KindNetwork
	// KindInvalid means the backend answered 2xx with a semantically
	// invalid body.
	KindInvalid
	// KindCanceled means the caller cancelled; never retried.
	KindCanceled
)

// String returns the kind's lowercase label.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindInvalid:
		return "invalid"
	case KindCanceled:
		return "canceled"
	default:
		return "generic"
	}
}

// Error is the typed failure propagated after the attempt budget is spent.
type Error struct {
	Kind     Kind
	Attempts int
	cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: %s after %d attempt(s): %v", e.Kind, e.Attempts, e.cause)
}

// Unwrap exposes the last attempt's error.
func (e *Error) Unwrap() error { return e.cause }

// kindError attaches a Kind to an attempt error so Do can classify the final
// failure. Produced by Fail.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// Fail marks err with an explicit failure kind. Operations use it when they
// can classify better than transport inspection (HTTP 5xx, invalid body).
func Fail(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf classifies an arbitrary error. Explicit Fail marks win, then context
// deadlines and net timeouts, then transport errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindGeneric
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return KindNetwork
	}
	return KindGeneric
}

// Policy bounds one retried operation.
type Policy struct {
	// Attempts is the total attempt budget, including the first try.
	Attempts int
	// Delay is the base backoff; the wait before attempt n+1 is Delay × n.
	Delay time.Duration
	// Timeout cancels a single attempt. Zero disables the per-attempt limit.
	Timeout time.Duration
}

// Op performs one attempt under the attempt-scoped context.
type Op func(ctx context.Context) error

// Do runs op under the policy. Before each attempt onAttempt (if non-nil) is
// called with the 1-based attempt number and the total budget. A timeout
// counts as a retryable failure; caller cancellation stops immediately and is
// reported as KindCanceled.
func Do(ctx context.Context, p Policy, op Op, onAttempt func(attempt, total int)) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if onAttempt != nil {
			onAttempt(attempt, attempts)
		}

		attemptCtx := ctx
		cancel := func() {}
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := op(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		last = err

		// The parent being done means the caller gave up, not the attempt.
		if ctx.Err() != nil {
			return &Error{Kind: KindCanceled, Attempts: attempt, cause: err}
		}

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Delay * time.Duration(attempt)):
		case <-ctx.Done():
			return &Error{Kind: KindCanceled, Attempts: attempt, cause: ctx.Err()}
		}
	}

	return &Error{Kind: KindOf(last), Attempts: attempts, cause: last}
}
