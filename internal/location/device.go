package location

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned when the user refused location access.
var ErrPermissionDenied = errors.New("location permission denied")

// Coordinates is a raw device position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Device provides the current position.
type Device interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// DeviceAddress is what an on-device geocoder returns.
type DeviceAddress struct {
	Name       string
	Street     string
	District   string
	City       string
	Subregion  string
	Region     string
	Country    string
	PostalCode string
}

// DeviceGeocoder reverse-geocodes without the backend.
type DeviceGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]DeviceAddress, error)
}

// StaticDevice reports a fixed, configured position. Without one, permission is denied.
type StaticDevice struct {
	Position *Coordinates
}

// RequestPermission grants access only when a position was configured.
func (d StaticDevice) RequestPermission(ctx context.Context) (bool, error) {
	return d.Position != nil, nil
}

// CurrentPosition returns the configured position.
func (d StaticDevice) CurrentPosition(ctx context.Context) (Coordinates, error) {
	if d.Position == nil {
		return Coordinates{}, ErrPermissionDenied
	}
	return *d.Position, nil
}
