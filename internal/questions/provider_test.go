package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/engine"
)

type scriptedProvider struct {
	calls   int
	failFor int // number of leading calls that fail
}

func (s *scriptedProvider) Generate(ctx context.Context) (engine.QuestionSet, error) {
	s.calls++
	if s.calls <= s.failFor {
		return nil, errors.New("malformed response")
	}
	return NewStatic().Generate(ctx)
}

func TestRetrying_SucceedsWithinBudget(t *testing.T) {
	inner := &scriptedProvider{failFor: 2}
	r := NewRetrying(inner, 3, zap.NewNop())

	qs, err := r.Generate(context.Background())

	require.NoError(t, err)
	assert.Len(t, qs, engine.QuestionsPerRound)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrying_ExhaustedBudgetSurfacesProviderFailure(t *testing.T) {
	inner := &scriptedProvider{failFor: 100}
	r := NewRetrying(inner, 3, zap.NewNop())

	_, err := r.Generate(context.Background())

	require.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, 3, inner.calls, "exactly the retry budget, no more")
}

func TestRetrying_StopsWhenContextCancelled(t *testing.T) {
	inner := &scriptedProvider{failFor: 100}
	r := NewRetrying(inner, 3, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Generate(ctx)

	require.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, 1, inner.calls)
}

func TestStatic_ProducesValidRounds(t *testing.T) {
	qs, err := NewStatic().Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, qs.Validate())
}
