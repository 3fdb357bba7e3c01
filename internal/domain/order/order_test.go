package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newPackedOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("cust-1", "kid-1", "2026-09-01")
	require.NoError(t, err)
	require.Equal(t, StatusPacked, o.Status)
	require.Nil(t, o.RiderID)
	return o
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("", "kid-1", "2026-09-01")
	require.ErrorIs(t, err, ErrCustomerRequired)

	_, err = NewOrder("cust-1", " ", "2026-09-01")
	require.ErrorIs(t, err, ErrKidRequired)

	_, err = NewOrder("cust-1", "kid-1", "01/09/2026")
	require.ErrorIs(t, err, ErrOrderDateRequired)
}

func TestAcceptBindsRider(t *testing.T) {
	o := newPackedOrder(t)

	require.NoError(t, o.Accept("rider-1"))
	require.Equal(t, StatusAccepted, o.Status)
	require.True(t, o.BoundTo("rider-1"))
	require.NotNil(t, o.AcceptedAt)

	// repeating the transition is rejected
	require.ErrorIs(t, o.Accept("rider-1"), ErrInvalidTransition)
}

func TestAcceptRespectsPreAssignment(t *testing.T) {
	o := newPackedOrder(t)
	require.NoError(t, o.AssignRider("rider-1"))
	require.Equal(t, StatusPacked, o.Status)

	require.ErrorIs(t, o.Accept("rider-2"), ErrRiderMismatch)
	require.NoError(t, o.Accept("rider-1"))
}

func TestAssignRiderOnlyWhilePacked(t *testing.T) {
	o := newPackedOrder(t)
	require.NoError(t, o.Accept("rider-1"))

	require.ErrorIs(t, o.AssignRider("rider-2"), ErrInvalidTransition)
	require.ErrorIs(t, o.AssignRider(" "), ErrRiderRequired)
}

func TestAdvanceWalksTheChain(t *testing.T) {
	o := newPackedOrder(t)

	require.NoError(t, o.Advance(StatusAccepted, "rider-1", ""))
	require.NoError(t, o.Advance(StatusPickedUp, "rider-1", ""))
	require.NoError(t, o.Advance(StatusOutForDelivery, "rider-1", "12:45 PM"))
	require.NotNil(t, o.EstimatedTime)
	require.Equal(t, "12:45 PM", *o.EstimatedTime)
	require.NoError(t, o.Advance(StatusDelivered, "rider-1", ""))

	require.Equal(t, StatusDelivered, o.Status)
	require.NotNil(t, o.PickedUpAt)
	require.NotNil(t, o.OutForDeliveryAt)
	require.NotNil(t, o.DeliveredAt)
}

func TestAdvanceRejectsSkipsAndPacked(t *testing.T) {
	o := newPackedOrder(t)

	// skipping Accepted
	require.ErrorIs(t, o.Advance(StatusPickedUp, "rider-1", ""), ErrRiderRequired)

	require.NoError(t, o.Advance(StatusAccepted, "rider-1", ""))
	require.ErrorIs(t, o.Advance(StatusDelivered, "rider-1", ""), ErrInvalidTransition)

	// Packed is never a target
	require.ErrorIs(t, o.Advance(StatusPacked, "rider-1", ""), ErrInvalidTransition)
}
