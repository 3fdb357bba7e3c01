package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/contracts"
	"lunchbox/internal/general/logger"

	"github.com/stretchr/testify/require"
)

func newTestFanout() (*Fanout, *Registry) {
	reg := NewRegistry()
	return NewFanout(reg, logger.New("fanout-test")), reg
}

func TestBroadcastReachesOnlyTheOrdersRoom(t *testing.T) {
	fan, reg := newTestFanout()

	watcher42a := newFakeSession("s1", user.RoleCustomer)
	watcher42b := newFakeSession("s2", user.RoleAdmin)
	watcher7 := newFakeSession("s3", user.RoleCustomer)

	reg.Subscribe("order-42", watcher42a)
	reg.Subscribe("order-42", watcher42b)
	reg.Subscribe("order-7", watcher7)

	fan.BroadcastLocation(context.Background(), "order-42", contracts.WSLocationUpdate{
		Type:      "location_update",
		OrderID:   "order-42",
		Location:  contracts.GeoPoint{Lat: 41.31, Lng: 69.24},
		Timestamp: time.Now().UTC(),
	})

	require.Len(t, watcher42a.messages(), 1)
	require.Len(t, watcher42b.messages(), 1)
	require.Empty(t, watcher7.messages(), "other rooms must not receive the event")

	var got contracts.WSLocationUpdate
	require.NoError(t, json.Unmarshal(watcher42a.messages()[0], &got))
	require.Equal(t, "location_update", got.Type)
	require.Equal(t, "order-42", got.OrderID)
	require.InDelta(t, 41.31, got.Location.Lat, 1e-9)
}

func TestBroadcastStatusPayload(t *testing.T) {
	fan, reg := newTestFanout()

	sess := newFakeSession("s1", user.RoleCustomer)
	reg.Subscribe("order-42", sess)

	fan.BroadcastStatus(context.Background(), "order-42", contracts.WSStatusUpdate{
		Type:      "status_update",
		OrderID:   "order-42",
		Status:    "Out for Delivery",
		Previous:  "Picked Up",
		Timestamp: time.Now().UTC(),
	})

	require.Len(t, sess.messages(), 1)

	var got contracts.WSStatusUpdate
	require.NoError(t, json.Unmarshal(sess.messages()[0], &got))
	require.Equal(t, "status_update", got.Type)
	require.Equal(t, "Out for Delivery", got.Status)
	require.Equal(t, "Picked Up", got.Previous)
}

func TestBroadcastSkipsRemovedSession(t *testing.T) {
	fan, reg := newTestFanout()

	gone := newFakeSession("s1", user.RoleCustomer)
	stays := newFakeSession("s2", user.RoleCustomer)
	reg.Subscribe("order-42", gone)
	reg.Subscribe("order-42", stays)

	reg.UnsubscribeAll(gone.ID())

	fan.BroadcastStatus(context.Background(), "order-42", contracts.WSStatusUpdate{
		Type: "status_update", OrderID: "order-42", Status: "Accepted",
	})

	require.Empty(t, gone.messages())
	require.Len(t, stays.messages(), 1)
}

func TestBroadcastEvictsDeadSubscriber(t *testing.T) {
	fan, reg := newTestFanout()

	dead := newFakeSession("s1", user.RoleCustomer)
	dead.failSend = true
	alive := newFakeSession("s2", user.RoleCustomer)
	reg.Subscribe("order-42", dead)
	reg.Subscribe("order-42", alive)

	fan.BroadcastStatus(context.Background(), "order-42", contracts.WSStatusUpdate{
		Type: "status_update", OrderID: "order-42", Status: "Accepted",
	})

	// dead session got dropped, the healthy one received the event
	require.Len(t, alive.messages(), 1)
	require.Len(t, reg.Subscribers("order-42"), 1)
	require.Equal(t, alive.ID(), reg.Subscribers("order-42")[0].ID())
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	fan, _ := newTestFanout()

	// must not panic or block
	fan.BroadcastLocation(context.Background(), "order-404", contracts.WSLocationUpdate{
		Type: "location_update", OrderID: "order-404",
	})
}
