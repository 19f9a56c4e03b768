// README: Best-effort geocoding of place labels via Google Maps.
package geo

import (
	"context"
	"time"

	"googlemaps.github.io/maps"

	"smartride/internal/types"
)

const resolveTimeout = 2 * time.Second

// Resolver turns opaque place labels into coordinates when a Maps key is
// configured. Resolution failure is never fatal: the label passes through
// unresolved and downstream components treat it as an opaque name.
type Resolver struct {
	client *maps.Client
}

func NewResolver(apiKey string) (*Resolver, error) {
	if apiKey == "" {
		return &Resolver{}, nil
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Resolver{client: c}, nil
}

// Resolve geocodes label. On any failure (no client, timeout, zero results)
// it returns the label unresolved.
func (r *Resolver) Resolve(ctx context.Context, label string) types.Location {
	loc := types.Location{Label: label}
	if r == nil || r.client == nil || label == "" {
		return loc
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	results, err := r.client.Geocode(ctx, &maps.GeocodingRequest{Address: label})
	if err != nil || len(results) == 0 {
		return loc
	}

	loc.Lat = results[0].Geometry.Location.Lat
	loc.Lng = results[0].Geometry.Location.Lng
	loc.Resolved = true
	return loc
}
