package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is the domain entity corresponding to the `users` table.
type User struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	Email        string
	Role         Role
	Phone        string
	Address      string
	Avatar       string
	PasswordHash string
}

var (
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
	ErrBadTimestamps     = errors.New("updated_at cannot be before created_at")
)

// NewUser constructs a new User entity. Caller provides an already-hashed password.
func NewUser(name, email string, role Role, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		Role:         role,
		PasswordHash: strings.TrimSpace(passwordHash),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// Validate checks invariants of the User entity.
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}
	if !u.CreatedAt.IsZero() && !u.UpdatedAt.IsZero() && u.UpdatedAt.Before(u.CreatedAt) {
		return ErrBadTimestamps
	}
	return nil
}

// UpdateContact sets name, phone and address (profile edit). Blank name is rejected.
func (u *User) UpdateContact(name, phone, address string) error {
	if name = strings.TrimSpace(name); name == "" {
		return ErrNameRequired
	}
	u.Name = name
	u.Phone = strings.TrimSpace(phone)
	u.Address = strings.TrimSpace(address)
	u.touch()
	return nil
}

// touch sets UpdatedAt to now (UTC).
func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

// Convenience helpers.
func (u *User) IsCustomer() bool { return u.Role.IsCustomer() }
func (u *User) IsRider() bool    { return u.Role.IsRider() }
func (u *User) IsAdmin() bool    { return u.Role.IsAdmin() }
