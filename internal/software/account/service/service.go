package service

import (
	"errors"

	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// Service-level errors surfaced to handlers.
var (
	ErrForbidden  = errors.New("actor is not allowed to perform this action")
	ErrNotYourKid = errors.New("kid does not belong to this customer")
)

// accountService implements ports.AccountService: profile edits, lunch-box
// registrations and skip days.
type accountService struct {
	logger    *logger.Logger
	uow       ports.UnitOfWork
	userRepo  ports.UserRepository
	kidRepo   ports.KidRepository
	leaveRepo ports.LeaveRepository
}

// NewAccountService creates the account service with the provided dependencies.
func NewAccountService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	userRepo ports.UserRepository,
	kidRepo ports.KidRepository,
	leaveRepo ports.LeaveRepository,
) ports.AccountService {
	return &accountService{
		logger:    logger,
		uow:       uow,
		userRepo:  userRepo,
		kidRepo:   kidRepo,
		leaveRepo: leaveRepo,
	}
}
