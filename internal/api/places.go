package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// PlaceSuggestion represents a location autocomplete result.
type PlaceSuggestion struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// AddressComponent is one entry of a Google-Places style address breakdown.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry holds the resolved position of a place.
type Geometry struct {
	Location LatLng `json:"location"`
}

// PlaceDetails is the resolved detail record of an autocomplete suggestion.
type PlaceDetails struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          *Geometry          `json:"geometry"`
	AddressComponents []AddressComponent `json:"address_components"`
}

// GeocodeResult is one reverse-geocode candidate.
type GeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          *Geometry          `json:"geometry"`
	AddressComponents []AddressComponent `json:"address_components"`
}

type searchResponse struct {
	Results []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"results"`
}

type detailsResponse struct {
	Details *PlaceDetails `json:"details"`
}

type reverseGeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

// SearchPlaces queries the location autocomplete proxy.
// types narrows the result kinds, e.g. "(cities)" or "geocode".
func (c *Client) SearchPlaces(ctx context.Context, query, types string) ([]PlaceSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []PlaceSuggestion{}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	if types != "" {
		params.Set("types", types)
	}

	var result searchResponse
	if err := c.do(ctx, http.MethodGet, "/api/places/search", params, nil, &result); err != nil {
		return []PlaceSuggestion{}, err
	}

	suggestions := make([]PlaceSuggestion, 0, len(result.Results))
	for _, r := range result.Results {
		suggestions = append(suggestions, PlaceSuggestion{
			PlaceID:       r.PlaceID,
			Description:   r.Description,
			MainText:      r.StructuredFormatting.MainText,
			SecondaryText: r.StructuredFormatting.SecondaryText,
		})
	}
	return suggestions, nil
}

// PlaceDetails fetches coordinates and address components for a place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)

	var result detailsResponse
	if err := c.do(ctx, http.MethodGet, "/api/places/details", params, nil, &result); err != nil {
		return nil, err
	}
	if result.Details == nil {
		return nil, fmt.Errorf("no details returned for place %s", placeID)
	}
	return result.Details, nil
}

// ReverseGeocode resolves coordinates through the backend proxy.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) ([]GeocodeResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var result reverseGeocodeResponse
	if err := c.do(ctx, http.MethodGet, "/api/places/reverse_geocode", params, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
