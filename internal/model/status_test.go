package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	// Every (from, to) pair, self-transitions included, must be allowed
	// iff it appears in the legal table.
	for _, from := range all {
		for _, to := range all {
			want := legal[[2]Status{from, to}]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
			err := Transition(from, to)
			if want {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var ite *IllegalTransitionError
				require.ErrorAs(t, err, &ite)
				assert.Equal(t, from, ite.From)
				assert.Equal(t, to, ite.To)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("deleted").Valid())
	assert.False(t, Status("").Valid())
}

func TestEventForStatus(t *testing.T) {
	assert.Equal(t, EventBookingConfirmed, EventForStatus(StatusConfirmed))
	assert.Equal(t, EventBookingCompleted, EventForStatus(StatusCompleted))
	assert.Equal(t, EventBookingCancelled, EventForStatus(StatusCancelled))
	assert.Equal(t, "", EventForStatus(StatusPending))
}
