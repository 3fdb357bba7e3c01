// Package geo carries rider location samples and the small amount of
// geometry the tracking views need.
package geo

import (
	"errors"
	"math"
	"strings"
	"time"
)

// LocationSample is a single rider position report tied to an order. The most
// recent sample wins; samples are not buffered or replayed for late joiners.
type LocationSample struct {
	OrderID string
	RiderID string

	Lat float64
	Lng float64

	// Optional destination the rider is heading to (school coordinates),
	// echoed so viewers can draw the route without a second lookup.
	DestLat *float64
	DestLng *float64

	Distance string // human-readable, e.g. "0.8 km"
	ETA      string // human-readable, e.g. "4 mins"

	RecordedAt time.Time
}

var (
	ErrOrderIDRequired  = errors.New("order id is required")
	ErrRiderIDRequired  = errors.New("rider id is required")
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewLocationSample validates coordinates and stamps the sample.
func NewLocationSample(orderID, riderID string, lat, lng float64, destLat, destLng *float64, distance, eta string, recordedAt time.Time) (*LocationSample, error) {
	sample := &LocationSample{
		OrderID:    strings.TrimSpace(orderID),
		RiderID:    strings.TrimSpace(riderID),
		Lat:        lat,
		Lng:        lng,
		DestLat:    destLat,
		DestLng:    destLng,
		Distance:   strings.TrimSpace(distance),
		ETA:        strings.TrimSpace(eta),
		RecordedAt: recordedAt,
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	return sample, nil
}

// Validate checks invariants of the LocationSample.
func (s *LocationSample) Validate() error {
	if s.OrderID == "" {
		return ErrOrderIDRequired
	}
	if s.RiderID == "" {
		return ErrRiderIDRequired
	}
	if s.Lat < -90 || s.Lat > 90 || math.IsNaN(s.Lat) {
		return ErrInvalidLatitude
	}
	if s.Lng < -180 || s.Lng > 180 || math.IsNaN(s.Lng) {
		return ErrInvalidLongitude
	}
	if s.DestLat != nil && (*s.DestLat < -90 || *s.DestLat > 90 || math.IsNaN(*s.DestLat)) {
		return ErrInvalidLatitude
	}
	if s.DestLng != nil && (*s.DestLng < -180 || *s.DestLng > 180 || math.IsNaN(*s.DestLng)) {
		return ErrInvalidLongitude
	}
	return nil
}

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0 // Earth radius in km
	a1 := lat1 * math.Pi / 180
	a2 := lat2 * math.Pi / 180
	da := (lat2 - lat1) * math.Pi / 180
	db := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(da/2)*math.Sin(da/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(db/2)*math.Sin(db/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimateMinutes converts a remaining distance to a rough ETA using an
// average city riding speed.
func EstimateMinutes(distanceKM float64) int {
	const avgSpeedKMH = 18.0
	if distanceKM < 0 {
		distanceKM = 0
	}
	minutes := (distanceKM / avgSpeedKMH) * 60.0

	m := int(math.Ceil(minutes))
	if m < 1 {
		return 1
	}
	return m
}
