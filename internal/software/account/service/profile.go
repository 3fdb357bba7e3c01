package service

import (
	"context"

	"lunchbox/internal/domain/user"
)

// Profile returns the user's own account record.
func (s *accountService) Profile(ctx context.Context, userID string) (*user.User, error) {
	var u *user.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.userRepo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies a contact edit and returns the updated record.
func (s *accountService) UpdateProfile(ctx context.Context, userID, name, phone, address string) (*user.User, error) {
	var u *user.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := u.UpdateContact(name, phone, address); err != nil {
			return err
		}
		return s.userRepo.UpdateContact(ctx, u.ID, u.Name, u.Phone, u.Address)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "profile_updated", "Contact details changed", map[string]any{
		"user_id": u.ID,
	})
	return u, nil
}
