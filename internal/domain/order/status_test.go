package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Packed", StatusPacked, true},
		{"packed", StatusPacked, true},
		{"  PICKED UP  ", StatusPickedUp, true},
		{"out for delivery", StatusOutForDelivery, true},
		{"Delivered", StatusDelivered, true},
		{"Cancelled", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			require.Equal(t, tc.want, got)
		} else {
			require.ErrorIs(t, err, ErrInvalidStatus, tc.in)
		}
	}
}

func TestStatusChainTransitions(t *testing.T) {
	chain := Statuses()
	require.Equal(t, []Status{StatusPacked, StatusAccepted, StatusPickedUp, StatusOutForDelivery, StatusDelivered}, chain)

	for i, from := range chain {
		for j, to := range chain {
			allowed := from.CanTransitionTo(to)
			if j == i+1 {
				require.True(t, allowed, "%s -> %s must be allowed", from, to)
			} else {
				require.False(t, allowed, "%s -> %s must be rejected", from, to)
			}
		}
	}
}

func TestStatusNextAndTerminal(t *testing.T) {
	next, ok := StatusPacked.Next()
	require.True(t, ok)
	require.Equal(t, StatusAccepted, next)

	_, ok = StatusDelivered.Next()
	require.False(t, ok)
	require.True(t, StatusDelivered.Terminal())
	require.False(t, StatusOutForDelivery.Terminal())

	_, ok = Status("bogus").Next()
	require.False(t, ok)
	require.False(t, Status("bogus").Valid())
}
