package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/general/postgres"
	"lunchbox/internal/ports"
)

type fakeUOW struct{}

func (fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memUserRepo struct {
	seq   int
	users map[string]*user.User
}

func (r *memUserRepo) CreateUser(_ context.Context, u *user.User) error {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, postgres.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, postgres.ErrUserNotFound
}

func (r *memUserRepo) UpdateContact(context.Context, string, string, string, string) error {
	return nil
}

func (r *memUserRepo) ListByRole(context.Context, user.Role) ([]*user.User, error) {
	return nil, nil
}

func newAuthFixture() (ports.AuthService, *memUserRepo, *jwt.Manager) {
	repo := &memUserRepo{users: make(map[string]*user.User)}
	mgr := jwt.NewManager("test-secret", 2*time.Hour)
	svc := NewAuthService(logger.New("auth-service-test"), fakeUOW{}, repo, mgr)
	return svc, repo, mgr
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mgr := newAuthFixture()
	ctx := context.Background()

	res, err := svc.Register(ctx, ports.RegisterInput{
		Name:     "Aziza",
		Email:    "aziza@example.com",
		Password: "password123",
		Role:     user.RoleCustomer,
		Phone:    "+998901112233",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotEmpty(t, res.User.ID)
	require.NotEqual(t, "password123", res.User.PasswordHash)

	// issued token carries the user identity
	_, claims, err := mgr.ParseAndValidate(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.Subject)
	require.Equal(t, user.RoleCustomer, claims.Role)

	logged, err := svc.Login(ctx, "aziza@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, logged.User.ID)
	require.NotEmpty(t, logged.Token)
}

func TestRegisterRejections(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{
		Name: "Aziza", Email: "aziza@example.com", Password: "short", Role: user.RoleCustomer,
	})
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, ports.RegisterInput{
		Name: "Aziza", Email: "aziza@example.com", Password: "password123", Role: user.RoleCustomer,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, ports.RegisterInput{
		Name: "Imposter", Email: "aziza@example.com", Password: "password123", Role: user.RoleCustomer,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejections(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{
		Name: "Aziza", Email: "aziza@example.com", Password: "password123", Role: user.RoleCustomer,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "aziza@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
