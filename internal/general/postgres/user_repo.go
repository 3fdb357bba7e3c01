package postgres

import (
	"context"
	"errors"
	"time"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/ports"

	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepo persists users using pgx and plain SQL.
type UserRepo struct{}

// NewUserRepo constructs a new UserRepo.
func NewUserRepo() ports.UserRepository {
	return &UserRepo{}
}

// CreateUser inserts a new user row and fills in the generated ID.
func (repo *UserRepo) CreateUser(ctx context.Context, u *user.User) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO users (name, email, role, phone, address, avatar, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		u.Name,
		u.Email,
		u.Role.String(),
		u.Phone,
		u.Address,
		u.Avatar,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID returns one user by id.
func (repo *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

// GetByEmail returns one user by email.
func (repo *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(tx.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
}

// UpdateContact updates the profile fields a user may edit.
func (repo *UserRepo) UpdateContact(ctx context.Context, id, name, phone, address string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1
	`, id, name, phone, address, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListByRole returns all users with the given role, newest first.
func (repo *UserRepo) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, userSelect+` WHERE role = $1 ORDER BY created_at DESC`, role.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

const userSelect = `
	SELECT id, created_at, updated_at, name, email, role, phone, address, avatar, password_hash
	FROM users`

func scanUser(row pgx.Row) (*user.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func scanUserRow(row pgx.Row) (*user.User, error) {
	var (
		out      user.User
		roleText string
		phone    *string
		address  *string
		avatar   *string
	)

	if err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt,
		&out.Name, &out.Email, &roleText, &phone, &address, &avatar, &out.PasswordHash,
	); err != nil {
		return nil, err
	}

	out.Role = user.Role(roleText)
	if phone != nil {
		out.Phone = *phone
	}
	if address != nil {
		out.Address = *address
	}
	if avatar != nil {
		out.Avatar = *avatar
	}
	return &out, nil
}
