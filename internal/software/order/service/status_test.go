package service

import (
	"context"
	"testing"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/ports"

	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, f *fixture) *order.Order {
	t.Helper()
	o, err := f.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "cust-1",
		KidID:      "kid-1",
		OrderDate:  "2026-09-02",
	})
	require.NoError(t, err)
	return o
}

func advance(f *fixture, orderID string, status order.Status, actorID string, role user.Role) (*ports.StatusChangeResult, error) {
	return f.svc.AdvanceStatus(context.Background(), ports.AdvanceStatusInput{
		OrderID:   orderID,
		Requested: status,
		ActorID:   actorID,
		ActorRole: role,
	})
}

func TestCreateOrderRules(t *testing.T) {
	t.Run("places order in Packed state", func(t *testing.T) {
		f := newFixture()
		o := placeOrder(t, f)

		require.Equal(t, order.StatusPacked, o.Status)
		require.Nil(t, o.RiderID)
		require.Equal(t, []order.EventType{order.EventOrderCreated}, f.events.types())
		require.Equal(t, []string{"order.status.packed"}, f.pub.statusKeys)
	})

	t.Run("rejects another customer's kid", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
			CustomerID: "cust-other", KidID: "kid-1", OrderDate: "2026-09-02",
		})
		require.ErrorIs(t, err, ErrNotYourKid)
	})

	t.Run("rejects kid on leave", func(t *testing.T) {
		f := newFixture()
		f.leaves.rows = append(f.leaves.rows, ports.LeaveRow{KidID: "kid-1", LeaveDate: "2026-09-02"})

		_, err := f.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
			CustomerID: "cust-1", KidID: "kid-1", OrderDate: "2026-09-02",
		})
		require.ErrorIs(t, err, ErrKidOnLeave)
	})

	t.Run("rejects second order same kid same day", func(t *testing.T) {
		f := newFixture()
		placeOrder(t, f)

		_, err := f.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
			CustomerID: "cust-1", KidID: "kid-1", OrderDate: "2026-09-02",
		})
		require.ErrorIs(t, err, ErrDuplicateOrder)
	})
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)

	res, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)
	require.Equal(t, order.StatusPacked, res.Previous)
	require.Equal(t, order.StatusAccepted, res.Order.Status)
	require.NotNil(t, res.Order.RiderID)
	require.Equal(t, "rider-1", *res.Order.RiderID)

	_, err = advance(f, o.ID, order.StatusPickedUp, "rider-1", user.RoleRider)
	require.NoError(t, err)

	res, err = f.svc.AdvanceStatus(context.Background(), ports.AdvanceStatusInput{
		OrderID: o.ID, Requested: order.StatusOutForDelivery,
		ActorID: "rider-1", ActorRole: user.RoleRider,
		EstimatedTime: "12:45 PM",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Order.EstimatedTime)
	require.Equal(t, "12:45 PM", *res.Order.EstimatedTime)

	res, err = advance(f, o.ID, order.StatusDelivered, "rider-1", user.RoleRider)
	require.NoError(t, err)
	require.True(t, res.Order.Status.Terminal())

	require.Equal(t, []order.EventType{
		order.EventOrderCreated,
		order.EventOrderAccepted,
		order.EventOrderPickedUp,
		order.EventOutForDelivery,
		order.EventOrderDelivered,
	}, f.events.types())

	require.Equal(t, []string{
		"order.status.packed",
		"order.status.accepted",
		"order.status.picked_up",
		"order.status.out_for_delivery",
		"order.status.delivered",
	}, f.pub.statusKeys)

	// every transition reached the room, creation did not (no status change yet)
	require.Len(t, f.rooms.statuses, 4)
	last := f.rooms.statuses[3]
	require.Equal(t, "Delivered", last.Status)
	require.Equal(t, "Out for Delivery", last.Previous)
	require.NotNil(t, last.RiderInfo)
	require.Equal(t, "Bek", last.RiderInfo.Name)
}

func TestAdvanceStatusRejectsRepeatAndSkip(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)

	_, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)
	_, err = advance(f, o.ID, order.StatusPickedUp, "rider-1", user.RoleRider)
	require.NoError(t, err)
	_, err = advance(f, o.ID, order.StatusOutForDelivery, "rider-1", user.RoleRider)
	require.NoError(t, err)

	// re-sending the current status is not a no-op, it is an error
	_, err = advance(f, o.ID, order.StatusOutForDelivery, "rider-1", user.RoleRider)
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	// and the failed attempt reached nobody
	require.Len(t, f.rooms.statuses, 3)

	f2 := newFixture()
	o2 := placeOrder(t, f2)
	_, err = advance(f2, o2.ID, order.StatusPickedUp, "rider-1", user.RoleRider)
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	_, err = advance(f2, o2.ID, order.StatusPacked, "rider-1", user.RoleRider)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestAdvanceStatusAuthorization(t *testing.T) {
	t.Run("customer cannot drive the lifecycle", func(t *testing.T) {
		f := newFixture()
		o := placeOrder(t, f)
		_, err := advance(f, o.ID, order.StatusAccepted, "cust-1", user.RoleCustomer)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("another rider cannot touch a bound order", func(t *testing.T) {
		f := newFixture()
		o := placeOrder(t, f)
		_, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
		require.NoError(t, err)

		_, err = advance(f, o.ID, order.StatusPickedUp, "rider-2", user.RoleRider)
		require.ErrorIs(t, err, order.ErrRiderMismatch)
	})

	t.Run("admin advances using the bound rider", func(t *testing.T) {
		f := newFixture()
		o := placeOrder(t, f)
		_, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
		require.NoError(t, err)

		res, err := advance(f, o.ID, order.StatusPickedUp, "admin-1", user.RoleAdmin)
		require.NoError(t, err)
		require.Equal(t, "rider-1", *res.Order.RiderID)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture()
		_, err := advance(f, "order-404", order.StatusAccepted, "rider-1", user.RoleRider)
		require.ErrorIs(t, err, order.ErrNotFound)
	})
}

func TestAssignRider(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)

	_, err := f.svc.AssignRider(context.Background(), o.ID, "rider-1", "cust-1", user.RoleCustomer)
	require.ErrorIs(t, err, ErrForbidden)

	assigned, err := f.svc.AssignRider(context.Background(), o.ID, "rider-1", "admin-1", user.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, "rider-1", *assigned.RiderID)
	require.Equal(t, order.StatusPacked, assigned.Status)

	// only the pre-assigned rider may accept now
	_, err = advance(f, o.ID, order.StatusAccepted, "rider-2", user.RoleRider)
	require.ErrorIs(t, err, order.ErrRiderMismatch)

	_, err = advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)

	// assignment is a Packed-only override
	_, err = f.svc.AssignRider(context.Background(), o.ID, "rider-2", "admin-1", user.RoleAdmin)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestCanJoinRoom(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.CanJoinRoom(ctx, o.ID, "cust-1", user.RoleCustomer))
	require.NoError(t, f.svc.CanJoinRoom(ctx, o.ID, "admin-1", user.RoleAdmin))

	// any rider may watch an unassigned Packed order
	require.NoError(t, f.svc.CanJoinRoom(ctx, o.ID, "rider-2", user.RoleRider))

	// an unrelated customer may not
	err := f.svc.CanJoinRoom(ctx, o.ID, "cust-other", user.RoleCustomer)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)

	// once bound, only that rider keeps access
	require.NoError(t, f.svc.CanJoinRoom(ctx, o.ID, "rider-1", user.RoleRider))
	err = f.svc.CanJoinRoom(ctx, o.ID, "rider-2", user.RoleRider)
	require.ErrorIs(t, err, ErrForbidden)

	err = f.svc.CanJoinRoom(ctx, "order-404", "cust-1", user.RoleCustomer)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestRecordRiderLocation(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)
	ctx := context.Background()

	_, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)

	destLat, destLng := 41.3275, 69.2817
	sample := &geo.LocationSample{
		OrderID: o.ID, RiderID: "rider-1",
		Lat: 41.3111, Lng: 69.2797,
		DestLat: &destLat, DestLng: &destLng,
		RecordedAt: time.Now().UTC(),
	}

	got, err := f.svc.RecordRiderLocation(ctx, sample)
	require.NoError(t, err)

	// distance and ETA get derived from the destination
	require.NotEmpty(t, got.Distance)
	require.NotEmpty(t, got.ETA)

	stored, err := f.locations.GetCurrent(ctx, "rider-1")
	require.NoError(t, err)
	require.InDelta(t, 41.3111, stored.Lat, 1e-9)

	require.Len(t, f.rooms.locations, 1)
	require.Equal(t, o.ID, f.rooms.locations[0].OrderID)
	require.Equal(t, 1, f.pub.locationMsg)
}

func TestRecordRiderLocationRejections(t *testing.T) {
	f := newFixture()
	o := placeOrder(t, f)
	ctx := context.Background()

	_, err := advance(f, o.ID, order.StatusAccepted, "rider-1", user.RoleRider)
	require.NoError(t, err)

	t.Run("unbound rider", func(t *testing.T) {
		_, err := f.svc.RecordRiderLocation(ctx, &geo.LocationSample{
			OrderID: o.ID, RiderID: "rider-2", Lat: 41.3, Lng: 69.2, RecordedAt: time.Now(),
		})
		require.ErrorIs(t, err, order.ErrRiderMismatch)
	})

	t.Run("out-of-range coordinates", func(t *testing.T) {
		_, err := f.svc.RecordRiderLocation(ctx, &geo.LocationSample{
			OrderID: o.ID, RiderID: "rider-1", Lat: 95, Lng: 69.2, RecordedAt: time.Now(),
		})
		require.ErrorIs(t, err, geo.ErrInvalidLatitude)
	})

	t.Run("delivered order", func(t *testing.T) {
		for _, st := range []order.Status{order.StatusPickedUp, order.StatusOutForDelivery, order.StatusDelivered} {
			_, err := advance(f, o.ID, st, "rider-1", user.RoleRider)
			require.NoError(t, err)
		}
		_, err := f.svc.RecordRiderLocation(ctx, &geo.LocationSample{
			OrderID: o.ID, RiderID: "rider-1", Lat: 41.3, Lng: 69.2, RecordedAt: time.Now(),
		})
		require.ErrorIs(t, err, ErrOrderClosed)
	})
}
