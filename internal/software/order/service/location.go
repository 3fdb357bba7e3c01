package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/general/contracts"
)

// RecordRiderLocation validates that the sample comes from the order's bound
// rider, persists it as the rider's current position, then fans it out to the
// order's room and the location exchange.
func (s *orderService) RecordRiderLocation(ctx context.Context, sample *geo.LocationSample) (*geo.LocationSample, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.GetByID(ctx, sample.OrderID)
		if err != nil {
			return err
		}
		if !o.BoundTo(sample.RiderID) {
			return order.ErrRiderMismatch
		}
		if o.Status.Terminal() {
			return ErrOrderClosed
		}

		fillDerived(sample)

		return s.locationRepo.UpsertCurrent(ctx, sample)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, sample.OrderID)
	s.logger.Debug(ctx, "rider_location_recorded", "Rider position stored", map[string]any{
		"rider_id": sample.RiderID,
		"lat":      sample.Lat,
		"lng":      sample.Lng,
	})

	point := contracts.GeoPoint{Lat: sample.Lat, Lng: sample.Lng}
	var dest *contracts.GeoPoint
	if sample.DestLat != nil && sample.DestLng != nil {
		dest = &contracts.GeoPoint{Lat: *sample.DestLat, Lng: *sample.DestLng}
	}

	// live room first, then the broker; both best effort after commit
	s.rooms.BroadcastLocation(ctx, sample.OrderID, contracts.WSLocationUpdate{
		Type:        "location_update",
		OrderID:     sample.OrderID,
		Location:    point,
		Destination: dest,
		Distance:    sample.Distance,
		ETA:         sample.ETA,
		Timestamp:   sample.RecordedAt,
	})

	msg := contracts.RiderLocationMessage{
		RiderID:     sample.RiderID,
		OrderID:     sample.OrderID,
		Location:    point,
		Destination: dest,
		Distance:    sample.Distance,
		ETA:         sample.ETA,
		Timestamp:   sample.RecordedAt,
		Envelope: contracts.Envelope{
			Producer: "api-service",
			SentAt:   time.Now().UTC(),
		},
	}
	if body, err := json.Marshal(msg); err == nil {
		if err := s.pub.PublishLocation(ctx, body); err != nil {
			s.logger.Error(ctx, "location_publish_failed", "Failed to publish location message", err, nil)
		}
	}

	return sample, nil
}

// fillDerived computes distance and ETA from the destination when the client
// did not send its own values.
func fillDerived(sample *geo.LocationSample) {
	if sample.DestLat == nil || sample.DestLng == nil {
		return
	}
	if sample.Distance != "" && sample.ETA != "" {
		return
	}

	km := geo.HaversineKM(sample.Lat, sample.Lng, *sample.DestLat, *sample.DestLng)
	if sample.Distance == "" {
		sample.Distance = fmt.Sprintf("%.1f km", km)
	}
	if sample.ETA == "" {
		sample.ETA = fmt.Sprintf("%d mins", geo.EstimateMinutes(km))
	}
}
