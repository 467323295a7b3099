package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutAttemptHappyPath(t *testing.T) {
	a := newCheckoutAttempt(StateCollecting)

	for _, next := range []CheckoutState{
		StateAwaitingPayment,
		StateVerifying,
		StateCommitting,
		StateNotifying,
		StateComplete,
	} {
		require.NoError(t, a.advance(next))
	}
	assert.Equal(t, StateComplete, a.state)
}

func TestCheckoutAttemptRejectsSkips(t *testing.T) {
	a := newCheckoutAttempt(StateCollecting)

	assert.Error(t, a.advance(StateCommitting))
	assert.Error(t, a.advance(StateComplete))
	assert.Equal(t, StateCollecting, a.state)

	// No going backwards either.
	require.NoError(t, a.advance(StateAwaitingPayment))
	assert.Error(t, a.advance(StateCollecting))
}

func TestCheckoutAttemptFailure(t *testing.T) {
	// Failed is reachable from every state except Complete.
	for _, from := range []CheckoutState{
		StateCollecting,
		StateAwaitingPayment,
		StateVerifying,
		StateCommitting,
		StateNotifying,
	} {
		a := newCheckoutAttempt(from)
		require.NoError(t, a.advance(StateFailed))
		assert.Equal(t, StateFailed, a.state)

		// Failed is terminal.
		assert.Error(t, a.advance(StateVerifying))
	}

	done := newCheckoutAttempt(StateComplete)
	assert.Error(t, done.advance(StateFailed))
}
