// internal/engine/locationfilter.go
package engine

import (
	"sort"

	"basobaas-search/internal/geo"
	"basobaas-search/internal/models"
)

// FilterByRadius annotates each candidate with its distance from the
// user and drops the ones measurably beyond radiusKm. Candidates
// without a coordinate cannot be measured and are retained, sorted
// after every distance-bearing candidate. Hiding un-geocoded listings
// would make them undiscoverable, so completeness wins over strict
// radius correctness here.
func FilterByRadius(candidates []models.PropertyRecord, user models.UserLocation, radiusKm float64) []models.ScoredCandidate {
	result := make([]models.ScoredCandidate, 0, len(candidates))

	for _, p := range candidates {
		c := models.ScoredCandidate{PropertyRecord: p}
		if p.Coordinate != nil {
			d := geo.DistanceKm(user.Latitude, user.Longitude, p.Coordinate.Latitude, p.Coordinate.Longitude)
			if d > radiusKm {
				continue
			}
			c.DistanceKm = &d
		}
		result = append(result, c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].DistanceKm, result[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	return result
}
