package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/kid"
	"lunchbox/internal/domain/leave"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/contracts"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// ----- in-memory doubles for the repository ports -----

type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memOrderRepo struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*order.Order)}
}

func (r *memOrderRepo) CreateOrder(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = fmt.Sprintf("order-%d", r.seq)
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetViewByID(context.Context, string) (*ports.OrderView, error) {
	return nil, order.ErrNotFound
}

func (r *memOrderRepo) ListViews(context.Context, ports.OrderListQuery) ([]ports.OrderView, error) {
	return nil, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) AssignRider(_ context.Context, orderID, riderID string, assignedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.RiderID = &riderID
	o.UpdatedAt = assignedAt
	return nil
}

func (r *memOrderRepo) ExistsFor(_ context.Context, kidID, date string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.KidID == kidID && o.OrderDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrderRepo) CountByStatusOn(_ context.Context, date string, status order.Status) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		if o.OrderDate == date && o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memOrderRepo) CountCreatedOn(_ context.Context, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		if o.OrderDate == date {
			n++
		}
	}
	return n, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []*order.Event
}

func (r *memEventRepo) Append(_ context.Context, e *order.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = fmt.Sprintf("event-%d", len(r.events)+1)
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) types() []order.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type memUserRepo struct {
	users map[string]*user.User
}

func (r *memUserRepo) CreateUser(_ context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", email)
}

func (r *memUserRepo) UpdateContact(context.Context, string, string, string, string) error {
	return nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role user.Role) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type memKidRepo struct {
	kids map[string]*kid.Kid
}

func (r *memKidRepo) CreateKid(_ context.Context, k *kid.Kid) error {
	r.kids[k.ID] = k
	return nil
}

func (r *memKidRepo) GetByID(_ context.Context, id string) (*kid.Kid, error) {
	k, ok := r.kids[id]
	if !ok {
		return nil, fmt.Errorf("kid %s not found", id)
	}
	return k, nil
}

func (r *memKidRepo) ListByCustomer(context.Context, string) ([]*kid.Kid, error) { return nil, nil }
func (r *memKidRepo) ListAll(context.Context) ([]*kid.Kid, error)                { return nil, nil }
func (r *memKidRepo) Update(context.Context, *kid.Kid) error                     { return nil }

type memLeaveRepo struct {
	rows []ports.LeaveRow
}

func (r *memLeaveRepo) CreateLeave(_ context.Context, l *leave.Leave) error {
	r.rows = append(r.rows, ports.LeaveRow{KidID: l.KidID, LeaveDate: l.LeaveDate})
	return nil
}

func (r *memLeaveRepo) ListByDate(_ context.Context, date string) ([]ports.LeaveRow, error) {
	var out []ports.LeaveRow
	for _, row := range r.rows {
		if row.LeaveDate == date {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memLeaveRepo) ListAll(context.Context) ([]ports.LeaveRow, error) { return r.rows, nil }

func (r *memLeaveRepo) ExistsFor(_ context.Context, kidID, date string) (bool, error) {
	for _, row := range r.rows {
		if row.KidID == kidID && row.LeaveDate == date {
			return true, nil
		}
	}
	return false, nil
}

type memLocationRepo struct {
	mu       sync.Mutex
	current  map[string]*geo.LocationSample
	archived []*geo.LocationSample
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{current: make(map[string]*geo.LocationSample)}
}

func (r *memLocationRepo) UpsertCurrent(_ context.Context, s *geo.LocationSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.current[s.RiderID] = &cp
	return nil
}

func (r *memLocationRepo) GetCurrent(_ context.Context, riderID string) (*geo.LocationSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.current[riderID]
	if !ok {
		return nil, fmt.Errorf("no location for rider %s", riderID)
	}
	return s, nil
}

func (r *memLocationRepo) Archive(_ context.Context, s *geo.LocationSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.archived = append(r.archived, &cp)
	return nil
}

func (r *memLocationRepo) CountActiveSince(context.Context, time.Time) (int, error) {
	return len(r.current), nil
}

// ----- doubles for the outbound ports -----

type fakePublisher struct {
	mu          sync.Mutex
	statusKeys  []string
	locationMsg int
}

func (p *fakePublisher) PublishOrderStatus(_ context.Context, _ []byte, routingKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusKeys = append(p.statusKeys, routingKey)
	return nil
}

func (p *fakePublisher) PublishLocation(context.Context, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locationMsg++
	return nil
}

type fakeBroadcaster struct {
	mu        sync.Mutex
	statuses  []contracts.WSStatusUpdate
	locations []contracts.WSLocationUpdate
}

func (b *fakeBroadcaster) BroadcastStatus(_ context.Context, _ string, msg contracts.WSStatusUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, msg)
}

func (b *fakeBroadcaster) BroadcastLocation(_ context.Context, _ string, msg contracts.WSLocationUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locations = append(b.locations, msg)
}

// ----- test fixture -----

type fixture struct {
	svc       ports.OrderService
	orders    *memOrderRepo
	events    *memEventRepo
	users     *memUserRepo
	kids      *memKidRepo
	leaves    *memLeaveRepo
	locations *memLocationRepo
	pub       *fakePublisher
	rooms     *fakeBroadcaster
}

func newFixture() *fixture {
	f := &fixture{
		orders:    newMemOrderRepo(),
		events:    &memEventRepo{},
		users:     &memUserRepo{users: make(map[string]*user.User)},
		kids:      &memKidRepo{kids: make(map[string]*kid.Kid)},
		leaves:    &memLeaveRepo{},
		locations: newMemLocationRepo(),
		pub:       &fakePublisher{},
		rooms:     &fakeBroadcaster{},
	}
	f.svc = NewOrderService(
		testLogger(), fakeUOW{},
		f.orders, f.events, f.users, f.kids, f.leaves, f.locations,
		f.pub, f.rooms,
	)

	f.users.users["cust-1"] = &user.User{ID: "cust-1", Name: "Aziza", Email: "aziza@example.com", Role: user.RoleCustomer}
	f.users.users["rider-1"] = &user.User{ID: "rider-1", Name: "Bek", Email: "bek@example.com", Role: user.RoleRider, Phone: "+998901234567"}
	f.users.users["rider-2"] = &user.User{ID: "rider-2", Name: "Diyor", Email: "diyor@example.com", Role: user.RoleRider}
	f.users.users["admin-1"] = &user.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: user.RoleAdmin}
	f.kids.kids["kid-1"] = &kid.Kid{ID: "kid-1", CustomerID: "cust-1", Name: "Timur",
		SchoolName: "School 21", SchoolAddress: "Tashkent", ParentPhone: "+998900000000", DeliveryAddress: "Chilonzor 5"}

	return f
}

func testLogger() *logger.Logger {
	return logger.New("order-service-test")
}
