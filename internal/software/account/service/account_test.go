package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lunchbox/internal/domain/kid"
	"lunchbox/internal/domain/leave"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// ----- in-memory doubles -----

type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", email)
}

func (r *memUserRepo) UpdateContact(_ context.Context, id, name, phone, address string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.Name, u.Phone, u.Address = name, phone, address
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
	seq  int
	kids map[string]*kid.Kid
}

func (r *memKidRepo) CreateKid(_ context.Context, k *kid.Kid) error {
	r.seq++
	k.ID = fmt.Sprintf("kid-%d", r.seq)
	cp := *k
	r.kids[k.ID] = &cp
	return nil
}

func (r *memKidRepo) GetByID(_ context.Context, id string) (*kid.Kid, error) {
	k, ok := r.kids[id]
	if !ok {
		return nil, fmt.Errorf("kid %s not found", id)
	}
	cp := *k
	return &cp, nil
}

func (r *memKidRepo) ListByCustomer(_ context.Context, customerID string) ([]*kid.Kid, error) {
	var out []*kid.Kid
	for _, k := range r.kids {
		if k.CustomerID == customerID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *memKidRepo) ListAll(context.Context) ([]*kid.Kid, error) {
	var out []*kid.Kid
	for _, k := range r.kids {
		out = append(out, k)
	}
	return out, nil
}

func (r *memKidRepo) Update(_ context.Context, k *kid.Kid) error {
	if _, ok := r.kids[k.ID]; !ok {
		return fmt.Errorf("kid %s not found", k.ID)
	}
	cp := *k
	r.kids[k.ID] = &cp
	return nil
}

type memLeaveRepo struct {
	rows []ports.LeaveRow
}

func (r *memLeaveRepo) CreateLeave(_ context.Context, l *leave.Leave) error {
	r.rows = append(r.rows, ports.LeaveRow{
		ID:        fmt.Sprintf("leave-%d", len(r.rows)+1),
		KidID:     l.KidID,
		LeaveDate: l.LeaveDate,
		CreatedAt: l.CreatedAt,
	})
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

func (r *memLeaveRepo) ListAll(context.Context) ([]ports.LeaveRow, error) {
	out := make([]ports.LeaveRow, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *memLeaveRepo) ExistsFor(_ context.Context, kidID, date string) (bool, error) {
	for _, row := range r.rows {
		if row.KidID == kidID && row.LeaveDate == date {
			return true, nil
		}
	}
	return false, nil
}

// ----- fixture -----

type fixture struct {
	svc    ports.AccountService
	users  *memUserRepo
	kids   *memKidRepo
	leaves *memLeaveRepo
}

func newFixture() *fixture {
	f := &fixture{
		users:  &memUserRepo{users: make(map[string]*user.User)},
		kids:   &memKidRepo{kids: make(map[string]*kid.Kid)},
		leaves: &memLeaveRepo{},
	}
	f.svc = NewAccountService(logger.New("account-service-test"), fakeUOW{}, f.users, f.kids, f.leaves)

	f.users.users["cust-1"] = &user.User{ID: "cust-1", Name: "Aziza", Email: "aziza@example.com", Role: user.RoleCustomer}
	f.users.users["cust-2"] = &user.User{ID: "cust-2", Name: "Malika", Email: "malika@example.com", Role: user.RoleCustomer}
	f.users.users["admin-1"] = &user.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: user.RoleAdmin}

	return f
}

func validKid() ports.KidInput {
	return ports.KidInput{
		Name:            "Timur",
		SchoolName:      "School 21",
		SchoolAddress:   "Tashkent",
		ParentPhone:     "+998900000000",
		DeliveryAddress: "Chilonzor 5",
	}
}

// ----- tests -----

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	u, err := f.svc.UpdateProfile(ctx, "cust-1", "Aziza K", "+998911112233", "Yunusobod 9")
	require.NoError(t, err)
	require.Equal(t, "Aziza K", u.Name)
	require.Equal(t, "+998911112233", u.Phone)

	stored, err := f.svc.Profile(ctx, "cust-1")
	require.NoError(t, err)
	require.Equal(t, "Yunusobod 9", stored.Address)

	_, err = f.svc.UpdateProfile(ctx, "cust-1", "   ", "", "")
	require.ErrorIs(t, err, user.ErrNameRequired)
}

func TestKidRegistration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	k, err := f.svc.AddKid(ctx, "cust-1", validKid())
	require.NoError(t, err)
	require.NotEmpty(t, k.ID)
	require.Equal(t, "cust-1", k.CustomerID)

	in := validKid()
	in.DeliveryAddress = ""
	_, err = f.svc.AddKid(ctx, "cust-1", in)
	require.ErrorIs(t, err, kid.ErrDeliveryAddrRequired)

	own, err := f.svc.ListKids(ctx, "cust-1", user.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, own, 1)

	other, err := f.svc.ListKids(ctx, "cust-2", user.RoleCustomer)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestUpdateKidOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	k, err := f.svc.AddKid(ctx, "cust-1", validKid())
	require.NoError(t, err)

	in := validKid()
	in.SchoolName = "School 50"
	_, err = f.svc.UpdateKid(ctx, k.ID, "cust-2", user.RoleCustomer, in)
	require.ErrorIs(t, err, ErrNotYourKid)

	updated, err := f.svc.UpdateKid(ctx, k.ID, "cust-1", user.RoleCustomer, in)
	require.NoError(t, err)
	require.Equal(t, "School 50", updated.SchoolName)

	in.SchoolName = "School 7"
	updated, err = f.svc.UpdateKid(ctx, k.ID, "admin-1", user.RoleAdmin, in)
	require.NoError(t, err)
	require.Equal(t, "School 7", updated.SchoolName)
}

func TestListAllKidsIsAdminOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddKid(ctx, "cust-1", validKid())
	require.NoError(t, err)

	_, err = f.svc.ListAllKids(ctx, user.RoleCustomer)
	require.ErrorIs(t, err, ErrForbidden)

	all, err := f.svc.ListAllKids(ctx, user.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestMarkLeaveRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	k, err := f.svc.AddKid(ctx, "cust-1", validKid())
	require.NoError(t, err)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	today := time.Now().UTC().Format("2006-01-02")

	_, err = f.svc.MarkLeave(ctx, k.ID, today, "cust-1", user.RoleCustomer)
	require.ErrorIs(t, err, leave.ErrTooLate)

	_, err = f.svc.MarkLeave(ctx, k.ID, tomorrow, "cust-2", user.RoleCustomer)
	require.ErrorIs(t, err, ErrNotYourKid)

	l, err := f.svc.MarkLeave(ctx, k.ID, tomorrow, "cust-1", user.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, tomorrow, l.LeaveDate)

	_, err = f.svc.MarkLeave(ctx, k.ID, tomorrow, "cust-1", user.RoleCustomer)
	require.ErrorIs(t, err, leave.ErrAlreadyMarked)
}

func TestListLeavesScoping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mine, err := f.svc.AddKid(ctx, "cust-1", validKid())
	require.NoError(t, err)
	theirsIn := validKid()
	theirsIn.Name = "Lola"
	theirs, err := f.svc.AddKid(ctx, "cust-2", theirsIn)
	require.NoError(t, err)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	_, err = f.svc.MarkLeave(ctx, mine.ID, tomorrow, "cust-1", user.RoleCustomer)
	require.NoError(t, err)
	_, err = f.svc.MarkLeave(ctx, theirs.ID, tomorrow, "cust-2", user.RoleCustomer)
	require.NoError(t, err)

	all, err := f.svc.ListLeaves(ctx, "admin-1", user.RoleAdmin, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := f.svc.ListLeaves(ctx, "cust-1", user.RoleCustomer, tomorrow)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, mine.ID, own[0].KidID)
}
