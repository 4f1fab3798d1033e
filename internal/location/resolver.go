package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zekroTJA/timedmap"

	"voxxy/internal/api"
	"voxxy/internal/model"
)

const (
	// MinQueryLength is the shortest query sent to autocomplete.
	MinQueryLength = 2
	// DebounceDelay is how long typing must pause before a search fires.
	DebounceDelay = 300 * time.Millisecond

	detailsTTL = 10 * time.Minute
)

// ErrNoProfileLocation is returned when the profile has no city/state.
var ErrNoProfileLocation = errors.New("profile has no saved location")

// Backend is the subset of the API the resolver needs.
type Backend interface {
	SearchPlaces(ctx context.Context, query, types string) ([]api.PlaceSuggestion, error)
	PlaceDetails(ctx context.Context, placeID string) (*api.PlaceDetails, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]api.GeocodeResult, error)
}

// Resolver turns each location source into a Selection.
type Resolver struct {
	backend  Backend
	device   Device
	geocoder DeviceGeocoder
	details  *timedmap.TimedMap
}

// NewResolver creates a resolver. geocoder may be nil.
func NewResolver(backend Backend, device Device, geocoder DeviceGeocoder) *Resolver {
	return &Resolver{
		backend:  backend,
		device:   device,
		geocoder: geocoder,
		details:  timedmap.New(time.Minute),
	}
}

// Close stops the details cache cleaner.
func (r *Resolver) Close() {
	r.details.StopCleaner()
}

// ProfileSelection builds a selection from the signed-in user's saved location.
func ProfileSelection(u model.User) (Selection, error) {
	if !u.HasLocation() {
		return Selection{}, ErrNoProfileLocation
	}
	sel := Selection{
		Provenance:   ProvenanceProfile,
		Neighborhood: u.Neighborhood,
		City:         u.City,
		State:        u.State,
		Formatted:    fmt.Sprintf("%s, %s", u.City, u.State),
	}
	if u.Latitude != nil && u.Longitude != nil {
		sel.Latitude = floatPtr(*u.Latitude)
		sel.Longitude = floatPtr(*u.Longitude)
	}
	return sel, nil
}

// Current resolves the device position. The backend geocoder is tried first;
// if it fails the on-device geocoder is used, and as a last resort the
// selection carries coordinates only.
func (r *Resolver) Current(ctx context.Context) (Selection, error) {
	if r.device == nil {
		return Selection{}, ErrPermissionDenied
	}
	granted, err := r.device.RequestPermission(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("location permission request failed: %w", err)
	}
	if !granted {
		return Selection{}, ErrPermissionDenied
	}

	pos, err := r.device.CurrentPosition(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to read device position: %w", err)
	}

	base := Selection{
		Provenance: ProvenanceCurrent,
		Latitude:   floatPtr(pos.Latitude),
		Longitude:  floatPtr(pos.Longitude),
	}

	results, err := r.backend.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
	if err == nil && len(results) > 0 {
		return fromGeocodeResult(base, results[0]), nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("reverse geocode proxy failed, falling back to device geocoder")
	}

	if r.geocoder != nil {
		addrs, gerr := r.geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
		if gerr == nil && len(addrs) > 0 {
			return fromDeviceAddress(base, addrs[0]), nil
		}
		if gerr != nil {
			log.Warn().Err(gerr).Msg("device reverse geocode failed")
		}
	}

	base.Formatted = base.PayloadLocation()
	return base, nil
}

// Search returns autocomplete suggestions. Queries shorter than
// MinQueryLength return an empty list without touching the network.
func (r *Resolver) Search(ctx context.Context, query string) ([]api.PlaceSuggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []api.PlaceSuggestion{}, nil
	}
	results, err := r.backend.SearchPlaces(ctx, query, "geocode")
	if err != nil {
		return []api.PlaceSuggestion{}, fmt.Errorf("location search failed: %w", err)
	}
	return results, nil
}

// Details finalizes a suggestion with coordinates and address components.
// When the details lookup fails the selection is built from the suggestion
// alone, without coordinates.
func (r *Resolver) Details(ctx context.Context, s api.PlaceSuggestion) Selection {
	if s.PlaceID != "" {
		if v, ok := r.details.GetValue(s.PlaceID).(Selection); ok {
			return v
		}
	}

	d, err := r.backend.PlaceDetails(ctx, s.PlaceID)
	if err != nil {
		log.Warn().Err(err).Str("place_id", s.PlaceID).Msg("place details failed, using suggestion only")
		return fromSuggestion(s)
	}

	sel := fromPlaceDetails(s, d)
	if s.PlaceID != "" {
		r.details.Set(s.PlaceID, sel, detailsTTL)
	}
	return sel
}

// ProfileUpdate builds the profile fields saved for a selection.
func ProfileUpdate(sel Selection) api.UserUpdate {
	update := api.UserUpdate{
		Neighborhood: &sel.Neighborhood,
		City:         &sel.City,
		State:        &sel.State,
	}
	if sel.HasCoordinates() {
		update.Latitude = floatPtr(*sel.Latitude)
		update.Longitude = floatPtr(*sel.Longitude)
	}
	return update
}

func fromGeocodeResult(base Selection, res api.GeocodeResult) Selection {
	addr := ParseAddressComponents(res.AddressComponents, res.FormattedAddress)
	base.Neighborhood = addr.Neighborhood
	base.City = addr.City
	base.State = addr.State
	base.Country = addr.Country
	base.Formatted = joinNonEmpty(addr.Neighborhood, addr.City, addr.State)
	if base.Formatted == "" {
		base.Formatted = res.FormattedAddress
	}
	return base
}

func fromDeviceAddress(base Selection, a DeviceAddress) Selection {
	city := a.City
	if city == "" {
		city = a.Subregion
	}
	base.Neighborhood = a.District
	base.City = city
	base.State = a.Region
	base.Country = a.Country
	base.Formatted = joinNonEmpty(a.District, city, a.Region)
	return base
}

func fromSuggestion(s api.PlaceSuggestion) Selection {
	addr := ParseAddressComponents(nil, s.Description)
	return Selection{
		Provenance:   ProvenanceCustom,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		Formatted:    s.Description,
	}
}

func fromPlaceDetails(s api.PlaceSuggestion, d *api.PlaceDetails) Selection {
	formatted := s.Description
	if formatted == "" {
		formatted = d.FormattedAddress
	}
	addr := ParseAddressComponents(d.AddressComponents, formatted)
	sel := Selection{
		Provenance:   ProvenanceCustom,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		State:        addr.State,
		Country:      addr.Country,
		Formatted:    formatted,
	}
	if d.Geometry != nil {
		sel.Latitude = floatPtr(d.Geometry.Location.Lat)
		sel.Longitude = floatPtr(d.Geometry.Location.Lng)
	}
	return sel
}
