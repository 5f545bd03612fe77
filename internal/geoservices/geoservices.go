// internal/geoservices/geoservices.go

// Package geoservices holds the clients for the two external location
// collaborators: forward geocoding of place names and coarse IP
// geolocation. Both are best-effort. The Resolver wraps them so the
// rest of the engine always receives a usable coordinate.
package geoservices

import (
	"context"

	"basobaas-search/internal/models"
)

// Kathmandu city centre, used whenever no better coordinate can be
// resolved for a request.
const (
	DefaultLatitude  = 27.7172
	DefaultLongitude = 85.3240
)

// Geocoder resolves a free-text place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*models.UserLocation, error)
}

// IPLocator resolves a client IP address to an approximate coordinate.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (*models.UserLocation, error)
}

// DefaultLocation returns the fallback coordinate.
func DefaultLocation() models.UserLocation {
	return models.UserLocation{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Source:    "default",
	}
}
