// Package leave models skip days: a parent marks a kid absent so no lunch box
// is dispatched for that date.
package leave

import (
	"errors"
	"strings"
	"time"
)

// Leave is the domain entity corresponding to the `leaves` table.
type Leave struct {
	ID        string
	CreatedAt time.Time

	KidID     string
	LeaveDate string // YYYY-MM-DD
}

var (
	ErrKidRequired     = errors.New("kid id is required")
	ErrDateRequired    = errors.New("leave date is required")
	ErrTooLate         = errors.New("leave must be submitted at least 1 day before")
	ErrAlreadyMarked   = errors.New("leave already marked for this date")
	ErrInvalidDateForm = errors.New("leave date must be YYYY-MM-DD")
)

// NewLeave validates the day-before rule against "now" and constructs a Leave.
func NewLeave(kidID, leaveDate string, now time.Time) (*Leave, error) {
	if kidID = strings.TrimSpace(kidID); kidID == "" {
		return nil, ErrKidRequired
	}
	if leaveDate = strings.TrimSpace(leaveDate); leaveDate == "" {
		return nil, ErrDateRequired
	}

	day, err := time.Parse("2006-01-02", leaveDate)
	if err != nil {
		return nil, ErrInvalidDateForm
	}

	// compare whole days: the leave day must be strictly after today
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !day.After(today) {
		return nil, ErrTooLate
	}

	return &Leave{
		CreatedAt: now.UTC(),
		KidID:     kidID,
		LeaveDate: leaveDate,
	}, nil
}
