// internal/geoservices/resolver.go
package geoservices

import (
	"context"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
	"basobaas-search/internal/models"
)

// ResolveRequest carries everything a request knows about where the
// user is. Explicit coordinates win; then a place name, then the client
// IP when the caller opted in.
type ResolveRequest struct {
	Latitude  *float64
	Longitude *float64
	Place     string
	ClientIP  string
	UseIP     bool
}

// Resolver picks the best available coordinate for a request. It never
// fails: every collaborator error degrades to the Kathmandu default.
type Resolver struct {
	geocoder Geocoder
	locator  IPLocator
	logger   logger.Logger
}

func NewResolver(geocoder Geocoder, locator IPLocator, log logger.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		locator:  locator,
		logger:   log,
	}
}

// Resolve returns a coordinate and whether it came from the request
// itself rather than a fallback chain.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) models.UserLocation {
	if req.Latitude != nil && req.Longitude != nil {
		return models.UserLocation{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Source:    "gps",
		}
	}

	if req.Place != "" && r.geocoder != nil {
		if loc, err := r.geocoder.Geocode(ctx, req.Place); err == nil {
			return *loc
		} else {
			metrics.CollaboratorFailures.WithLabelValues("geocoding").Inc()
			r.logger.Warn("geocoding failed, trying next source", map[string]interface{}{
				"place": req.Place,
				"error": err.Error(),
			})
		}
	}

	if req.UseIP && req.ClientIP != "" && r.locator != nil {
		if loc, err := r.locator.Locate(ctx, req.ClientIP); err == nil {
			return *loc
		} else {
			metrics.CollaboratorFailures.WithLabelValues("ip_location").Inc()
			r.logger.Warn("ip location failed, using default", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return DefaultLocation()
}
