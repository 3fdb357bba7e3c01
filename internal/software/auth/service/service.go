package service

import (
	"context"
	"errors"
	"strings"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/general/postgres"
	"lunchbox/internal/ports"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// authService implements signup and login with bcrypt hashing and JWT issuance.
type authService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	userRepo ports.UserRepository
	jwtMgr   *jwt.Manager
}

// NewAuthService creates the auth service.
func NewAuthService(logger *logger.Logger, uow ports.UnitOfWork, userRepo ports.UserRepository, jwtMgr *jwt.Manager) ports.AuthService {
	return &authService{logger: logger, uow: uow, userRepo: userRepo, jwtMgr: jwtMgr}
}

// Register creates a user account and returns a signed token for it.
func (s *authService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := user.NewUser(in.Name, in.Email, in.Role, string(hash))
	if err != nil {
		return nil, err
	}
	u.Phone = strings.TrimSpace(in.Phone)
	u.Address = strings.TrimSpace(in.Address)

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByEmail(ctx, u.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, postgres.ErrUserNotFound) {
			return err
		}
		return s.userRepo.CreateUser(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtMgr.IssueUserToken(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user_registered", "New account created", map[string]any{
		"user_id": u.ID,
		"role":    u.Role.String(),
	})

	return &ports.AuthResult{Token: token, User: u}, nil
}

// Login verifies credentials and returns a signed token.
func (s *authService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var u *user.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.userRepo.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.jwtMgr.IssueUserToken(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user_logged_in", "Login successful", map[string]any{
		"user_id": u.ID,
		"role":    u.Role.String(),
	})

	return &ports.AuthResult{Token: token, User: u}, nil
}
