package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ModelInvoker sends one prompt to an LLM and returns its raw text reply.
// Failures are reported as *InvocationError.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// GenerationSettings are the fixed generation parameters sent with every prompt.
type GenerationSettings struct {
	MaxTokens   int
	Temperature float32
}

type timeoutInvoker struct {
	inner   ModelInvoker
	timeout time.Duration
}

// NewTimeoutInvoker bounds every call to inner by timeout. A non-positive
// timeout returns inner unchanged.
func NewTimeoutInvoker(inner ModelInvoker, timeout time.Duration) ModelInvoker {
	if timeout <= 0 {
		return inner
	}
	return &timeoutInvoker{inner: inner, timeout: timeout}
}

func (t *timeoutInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.inner.Invoke(ctx, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var invErr *InvocationError
		if !errors.As(err, &invErr) {
			err = &InvocationError{Provider: "model", Err: err}
		}
		return "", fmt.Errorf("deadline of %s exceeded: %w", t.timeout, err)
	}
	return text, err
}

type retryingInvoker struct {
	inner        ModelInvoker
	maxAttempts  int
	initialDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewRetryingInvoker retries retryable invocation errors with exponential
// backoff. maxAttempts <= 1 returns inner unchanged, which keeps the default
// of exactly one attempt per resume.
func NewRetryingInvoker(inner ModelInvoker, maxAttempts int, initialDelay time.Duration) ModelInvoker {
	if maxAttempts <= 1 {
		return inner
	}
	return &retryingInvoker{
		inner:        inner,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		sleep:        sleepContext,
	}
}

func (r *retryingInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		text, err := r.inner.Invoke(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var invErr *InvocationError
		if !errors.As(err, &invErr) || !invErr.Retryable || attempt == r.maxAttempts {
			break
		}

		wait := r.initialDelay * time.Duration(1<<(attempt-1))
		log.Printf("⚠️ Attempt %d failed: %v. Retrying in %s...\n", attempt, err, wait)
		if err := r.sleep(ctx, wait); err != nil {
			return "", &InvocationError{Provider: "model", Err: fmt.Errorf("context cancelled: %w", err)}
		}
	}

	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
