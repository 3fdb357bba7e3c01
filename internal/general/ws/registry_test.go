package ws

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"lunchbox/internal/domain/user"

	"github.com/stretchr/testify/require"
)

// fakeSession records everything sent to it; Send can be made to fail.
type fakeSession struct {
	id     string
	userID string
	role   user.Role

	mu       sync.Mutex
	received [][]byte
	failSend bool
}

func newFakeSession(id string, role user.Role) *fakeSession {
	return &fakeSession{id: id, userID: "user-" + id, role: role}
}

func (f *fakeSession) ID() string      { return f.id }
func (f *fakeSession) UserID() string  { return f.userID }
func (f *fakeSession) Role() user.Role { return f.role }

func (f *fakeSession) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("send failed")
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.received = append(f.received, cp)
	return nil
}

func (f *fakeSession) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.received))
	copy(out, f.received)
	return out
}

func TestSubscribeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	sess := newFakeSession("s1", user.RoleCustomer)

	reg.Subscribe("order-1", sess)
	reg.Subscribe("order-1", sess)

	require.Len(t, reg.Subscribers("order-1"), 1)
}

func TestSessionCanWatchManyOrders(t *testing.T) {
	reg := NewRegistry()
	sess := newFakeSession("s1", user.RoleAdmin)

	reg.Subscribe("order-1", sess)
	reg.Subscribe("order-2", sess)

	require.Len(t, reg.Subscribers("order-1"), 1)
	require.Len(t, reg.Subscribers("order-2"), 1)
	require.Equal(t, 2, reg.RoomCount())
}

func TestUnsubscribeDeletesEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	sess := newFakeSession("s1", user.RoleCustomer)

	reg.Subscribe("order-1", sess)
	reg.Unsubscribe("order-1", sess.ID())

	require.Empty(t, reg.Subscribers("order-1"))
	require.Zero(t, reg.RoomCount())
}

func TestUnsubscribeAllLeavesEveryRoom(t *testing.T) {
	reg := NewRegistry()
	leaving := newFakeSession("s1", user.RoleCustomer)
	staying := newFakeSession("s2", user.RoleRider)

	reg.Subscribe("order-1", leaving)
	reg.Subscribe("order-2", leaving)
	reg.Subscribe("order-2", staying)

	reg.UnsubscribeAll(leaving.ID())

	require.Empty(t, reg.Subscribers("order-1"))
	require.Len(t, reg.Subscribers("order-2"), 1)
	require.Equal(t, staying.ID(), reg.Subscribers("order-2")[0].ID())
}

func TestSubscribersReturnsSnapshot(t *testing.T) {
	reg := NewRegistry()
	sess := newFakeSession("s1", user.RoleCustomer)
	reg.Subscribe("order-1", sess)

	snap := reg.Subscribers("order-1")
	reg.Unsubscribe("order-1", sess.ID())

	// the earlier snapshot is unaffected by the mutation
	require.Len(t, snap, 1)
	require.Empty(t, reg.Subscribers("order-1"))
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess := newFakeSession(fmt.Sprintf("sess-%d", n), user.RoleCustomer)
			reg.Subscribe("order-1", sess)
			_ = reg.Subscribers("order-1")
			reg.UnsubscribeAll(sess.ID())
		}(i)
	}
	wg.Wait()

	require.Empty(t, reg.Subscribers("order-1"))
}
