// Package kid holds the lunch-box registration entity: one row per child,
// carrying the school drop-off point a rider navigates to.
package kid

import (
	"errors"
	"strings"
	"time"
)

// Kid is the domain entity corresponding to the `kids_lunch_boxes` table.
type Kid struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	CustomerID string
	Name       string

	SchoolName    string
	SchoolAddress string
	SchoolLat     *float64
	SchoolLng     *float64

	ParentPhone     string
	DeliveryAddress string
}

var (
	ErrCustomerRequired      = errors.New("customer id is required")
	ErrNameRequired          = errors.New("kid name is required")
	ErrSchoolRequired        = errors.New("school name and address are required")
	ErrParentPhoneRequired   = errors.New("parent phone is required")
	ErrDeliveryAddrRequired  = errors.New("delivery address is required")
	ErrInvalidSchoolLatitude = errors.New("school latitude must be between -90 and 90")
	ErrInvalidSchoolLongitud = errors.New("school longitude must be between -180 and 180")
)

// NewKid constructs a lunch-box registration. School coordinates are optional;
// when absent the frontend falls back to geocoding the school address.
func NewKid(customerID, name, schoolName, schoolAddress, parentPhone, deliveryAddress string, schoolLat, schoolLng *float64) (*Kid, error) {
	now := time.Now().UTC()
	k := &Kid{
		CreatedAt:       now,
		UpdatedAt:       now,
		CustomerID:      strings.TrimSpace(customerID),
		Name:            strings.TrimSpace(name),
		SchoolName:      strings.TrimSpace(schoolName),
		SchoolAddress:   strings.TrimSpace(schoolAddress),
		SchoolLat:       schoolLat,
		SchoolLng:       schoolLng,
		ParentPhone:     strings.TrimSpace(parentPhone),
		DeliveryAddress: strings.TrimSpace(deliveryAddress),
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks invariants of the Kid entity.
func (k *Kid) Validate() error {
	if k.CustomerID == "" {
		return ErrCustomerRequired
	}
	if k.Name == "" {
		return ErrNameRequired
	}
	if k.SchoolName == "" || k.SchoolAddress == "" {
		return ErrSchoolRequired
	}
	if k.ParentPhone == "" {
		return ErrParentPhoneRequired
	}
	if k.DeliveryAddress == "" {
		return ErrDeliveryAddrRequired
	}
	if k.SchoolLat != nil && (*k.SchoolLat < -90 || *k.SchoolLat > 90) {
		return ErrInvalidSchoolLatitude
	}
	if k.SchoolLng != nil && (*k.SchoolLng < -180 || *k.SchoolLng > 180) {
		return ErrInvalidSchoolLongitud
	}
	return nil
}
