// Package questions is the boundary to the external question source. The
// core only sees Provider; the LLM-backed implementation and its failure
// modes stay behind it.
package questions

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/engine"
)

// ErrProviderFailure means the retry budget is exhausted; the caller
// surfaces it to the player who triggered generation.
var ErrProviderFailure = errors.New("question generation failed")

// DefaultAttempts is the provider retry budget.
const DefaultAttempts = 3

type Provider interface {
	// Generate produces a full validated question set or a retryable error.
	Generate(ctx context.Context) (engine.QuestionSet, error)
}

// Retrying wraps a Provider with a bounded retry loop. Malformed output,
// wrong item counts, and empty responses are all just retryable errors;
// only exhaustion of the budget escalates.
type Retrying struct {
	inner    Provider
	attempts int
	log      *zap.Logger
}

func NewRetrying(inner Provider, attempts int, log *zap.Logger) *Retrying {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Retrying{inner: inner, attempts: attempts, log: log}
}

func (r *Retrying) Generate(ctx context.Context) (engine.QuestionSet, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		qs, err := r.inner.Generate(ctx)
		if err == nil {
			return qs, nil
		}
		lastErr = err
		r.log.Warn("question generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("budget", r.attempts),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrProviderFailure, r.attempts, lastErr)
}
