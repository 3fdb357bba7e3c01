package service

import (
	"context"
	"strings"

	"lunchbox/internal/domain/kid"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/ports"
)

// AddKid registers a lunch box for one of the customer's kids.
func (s *accountService) AddKid(ctx context.Context, customerID string, in ports.KidInput) (*kid.Kid, error) {
	k, err := kid.NewKid(customerID, in.Name, in.SchoolName, in.SchoolAddress,
		in.ParentPhone, in.DeliveryAddress, in.SchoolLat, in.SchoolLng)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		return s.kidRepo.CreateKid(ctx, k)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "kid_registered", "Lunch box registered", map[string]any{
		"kid_id":      k.ID,
		"customer_id": k.CustomerID,
	})
	return k, nil
}

// ListKids returns the actor's own registrations. Admins get everything.
func (s *accountService) ListKids(ctx context.Context, actorID string, actorRole user.Role) ([]*kid.Kid, error) {
	var kids []*kid.Kid
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if actorRole.IsAdmin() {
			kids, err = s.kidRepo.ListAll(ctx)
		} else {
			kids, err = s.kidRepo.ListByCustomer(ctx, actorID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return kids, nil
}

// ListAllKids is the admin roster of every registered kid.
func (s *accountService) ListAllKids(ctx context.Context, actorRole user.Role) ([]*kid.Kid, error) {
	if !actorRole.IsAdmin() {
		return nil, ErrForbidden
	}

	var kids []*kid.Kid
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		kids, err = s.kidRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return kids, nil
}

// UpdateKid edits a registration. Customers may only touch their own kids.
func (s *accountService) UpdateKid(ctx context.Context, kidID, actorID string, actorRole user.Role, in ports.KidInput) (*kid.Kid, error) {
	var k *kid.Kid
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		k, err = s.kidRepo.GetByID(ctx, kidID)
		if err != nil {
			return err
		}
		if !actorRole.IsAdmin() && k.CustomerID != actorID {
			return ErrNotYourKid
		}

		k.Name = strings.TrimSpace(in.Name)
		k.SchoolName = strings.TrimSpace(in.SchoolName)
		k.SchoolAddress = strings.TrimSpace(in.SchoolAddress)
		k.SchoolLat = in.SchoolLat
		k.SchoolLng = in.SchoolLng
		k.ParentPhone = strings.TrimSpace(in.ParentPhone)
		k.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
		if err := k.Validate(); err != nil {
			return err
		}
		return s.kidRepo.Update(ctx, k)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "kid_updated", "Lunch box registration changed", map[string]any{
		"kid_id": k.ID,
	})
	return k, nil
}
