// README: Geocoding of free-text addresses via the Google Maps API.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"mboga/internal/types"
)

// GeocodeService resolves free-text delivery addresses to coordinates.
type GeocodeService struct {
	client *maps.Client
}

// NewGeocodeService creates a new GeocodeService with the given API key.
func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Locate geocodes a delivery address, biased to Kenya. Callers fall back to
// the per-order simulated destination when this fails.
func (s *GeocodeService) Locate(ctx context.Context, address string) (types.Point, error) {
	if address == "" {
		return types.Point{}, fmt.Errorf("empty address")
	}
	r := &maps.GeocodingRequest{
		Address: address,
		Region:  "ke",
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return types.Point{}, fmt.Errorf("geocode api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("no geocode result for %q", address)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
