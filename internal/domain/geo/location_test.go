package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLocationSampleValidation(t *testing.T) {
	dest := 41.3111
	destLng := 69.2797

	s, err := NewLocationSample("order-1", "rider-1", 41.30, 69.28, &dest, &destLng, "0.8 km", "4 mins", time.Time{})
	require.NoError(t, err)
	require.False(t, s.RecordedAt.IsZero())

	cases := []struct {
		name     string
		orderID  string
		riderID  string
		lat, lng float64
		err      error
	}{
		{"missing order", "", "rider-1", 41, 69, ErrOrderIDRequired},
		{"missing rider", "order-1", " ", 41, 69, ErrRiderIDRequired},
		{"lat too high", "order-1", "rider-1", 95, 69, ErrInvalidLatitude},
		{"lat too low", "order-1", "rider-1", -95, 69, ErrInvalidLatitude},
		{"lng too high", "order-1", "rider-1", 41, 185, ErrInvalidLongitude},
		{"lng too low", "order-1", "rider-1", 41, -185, ErrInvalidLongitude},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLocationSample(tc.orderID, tc.riderID, tc.lat, tc.lng, nil, nil, "", "", time.Now().UTC())
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestValidateDestinationBounds(t *testing.T) {
	bad := 99.0
	ok := 41.0
	s := &LocationSample{OrderID: "order-1", RiderID: "rider-1", Lat: 41, Lng: 69, DestLat: &bad, DestLng: &ok}
	require.ErrorIs(t, s.Validate(), ErrInvalidLatitude)
}

func TestHaversineKM(t *testing.T) {
	// same point
	require.InDelta(t, 0, HaversineKM(41.3111, 69.2797, 41.3111, 69.2797), 1e-9)

	// Tashkent center to Chilonzor, roughly 7 km
	d := HaversineKM(41.3111, 69.2797, 41.2756, 69.2034)
	require.InDelta(t, 7.4, d, 0.5)
}

func TestEstimateMinutes(t *testing.T) {
	require.Equal(t, 1, EstimateMinutes(0))
	require.Equal(t, 1, EstimateMinutes(-3))

	// 18 km at 18 km/h is an hour
	require.Equal(t, 60, EstimateMinutes(18))

	// short hops round up to whole minutes
	require.Equal(t, 2, EstimateMinutes(0.5))
}
