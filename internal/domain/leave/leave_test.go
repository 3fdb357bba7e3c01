package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLeaveDayBeforeRule(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		date string
		err  error
	}{
		{"tomorrow is fine", "2026-09-02", nil},
		{"far future is fine", "2026-10-20", nil},
		{"same day is too late", "2026-09-01", ErrTooLate},
		{"past is too late", "2026-08-31", ErrTooLate},
		{"bad format", "02-09-2026", ErrInvalidDateForm},
		{"empty date", "", ErrDateRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLeave("kid-1", tc.date, now)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "kid-1", l.KidID)
			require.Equal(t, tc.date, l.LeaveDate)
		})
	}
}

func TestNewLeaveRequiresKid(t *testing.T) {
	_, err := NewLeave("  ", "2026-09-02", time.Now().UTC())
	require.ErrorIs(t, err, ErrKidRequired)
}

func TestNewLeaveCutoffIsMidnight(t *testing.T) {
	// one minute before midnight, tomorrow is still a valid leave day
	now := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	_, err := NewLeave("kid-1", "2026-09-02", now)
	require.NoError(t, err)
}
