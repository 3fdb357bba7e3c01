package service

import (
	"context"
	"time"

	"lunchbox/internal/domain/leave"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/ports"
)

// MarkLeave records a skip day for a kid. The day-before cutoff and the
// one-leave-per-date rule are both enforced here.
func (s *accountService) MarkLeave(ctx context.Context, kidID, leaveDate, actorID string, actorRole user.Role) (*leave.Leave, error) {
	l, err := leave.NewLeave(kidID, leaveDate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		k, err := s.kidRepo.GetByID(ctx, l.KidID)
		if err != nil {
			return err
		}
		if !actorRole.IsAdmin() && k.CustomerID != actorID {
			return ErrNotYourKid
		}

		exists, err := s.leaveRepo.ExistsFor(ctx, l.KidID, l.LeaveDate)
		if err != nil {
			return err
		}
		if exists {
			return leave.ErrAlreadyMarked
		}
		return s.leaveRepo.CreateLeave(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "leave_marked", "Skip day recorded", map[string]any{
		"kid_id":     l.KidID,
		"leave_date": l.LeaveDate,
	})
	return l, nil
}

// ListLeaves returns skip days. Customers see only their own kids' leaves;
// admins see everything, optionally narrowed to one date.
func (s *accountService) ListLeaves(ctx context.Context, actorID string, actorRole user.Role, date string) ([]ports.LeaveRow, error) {
	var rows []ports.LeaveRow
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if date != "" {
			rows, err = s.leaveRepo.ListByDate(ctx, date)
		} else {
			rows, err = s.leaveRepo.ListAll(ctx)
		}
		if err != nil {
			return err
		}
		if actorRole.IsAdmin() {
			return nil
		}

		kids, err := s.kidRepo.ListByCustomer(ctx, actorID)
		if err != nil {
			return err
		}
		mine := make(map[string]bool, len(kids))
		for _, k := range kids {
			mine[k.ID] = true
		}
		filtered := rows[:0]
		for _, row := range rows {
			if mine[row.KidID] {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
