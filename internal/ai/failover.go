package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrExhausted marks a completion that failed after the fallback backend was
// already consulted. Providers answer it with their static fallback text; a
// hard primary error propagates unwrapped instead.
var ErrExhausted = errors.New("all completion backends failed")

// Failover pairs a primary completion backend with a secondary one. The
// secondary is consulted only when the primary fails with a quota or
// rate-limit error; any other error propagates, so callers decide whether to
// swallow it at their own boundary.
type Failover struct {
	primary   CompletionBackend
	secondary CompletionBackend
}

// NewFailover builds a primary/secondary pair. secondary may be nil, in
// which case quota errors propagate like any other error.
func NewFailover(primary, secondary CompletionBackend) *Failover {
	return &Failover{primary: primary, secondary: secondary}
}

// Complete runs the prompt against the primary backend, falling back to the
// secondary on quota/rate-limit failures only.
func (f *Failover) Complete(ctx context.Context, system, prompt string) (string, error) {
	text, err := f.primary.Complete(ctx, system, prompt)
	if err == nil {
		return text, nil
	}

	if !IsQuotaError(err) {
		return "", err
	}
	if f.secondary == nil {
		return "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}

	log.Printf("⚠️  %s quota/rate limit hit, falling back to %s: %v",
		f.primary.Name(), f.secondary.Name(), err)

	text, err = f.secondary.Complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return text, nil
}
