// internal/engine/scorer.go
package engine

import (
	"math"

	"basobaas-search/internal/models"
)

// Scorer computes the composite score used by the recommendation and
// nearby paths. Terms degrade independently: a missing input drops its
// term rather than failing the whole score.
type Scorer struct {
	weights ScoringWeights
}

func NewScorer(weights ScoringWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score combines distance, price fit, type match, popularity and the
// featured bonus into a single rounded integer.
func (s *Scorer) Score(c models.ScoredCandidate, prefs models.SearchPreferences) int {
	total := 0.0

	if c.DistanceKm != nil {
		total += s.distanceTerm(*c.DistanceKm)
	}
	if prefs.MinPrice != nil || prefs.MaxPrice != nil {
		total += s.priceTerm(c.Price, prefs.MinPrice, prefs.MaxPrice)
	}
	if prefs.Type != nil && c.Type == *prefs.Type {
		total += s.weights.Type * 100
	}
	total += s.popularityTerm(c.Views.Total)
	if c.Featured {
		total += s.weights.FeaturedBonus
	}

	return int(math.Round(total))
}

// distanceTerm loses two raw points per kilometer and floors at zero,
// so anything 50 km out contributes nothing.
func (s *Scorer) distanceTerm(distanceKm float64) float64 {
	raw := math.Max(0, 100-2*distanceKm)
	return raw * s.weights.Distance
}

// priceTerm grants the full term inside [min, max]. Outside it the term
// decays with the relative distance from the midpoint of the requested
// range; an open bound uses the given bound as the midpoint.
func (s *Scorer) priceTerm(price int, minPrice, maxPrice *int) float64 {
	full := s.weights.Price * 100

	lo := 0
	if minPrice != nil {
		lo = *minPrice
	}
	if (minPrice == nil || price >= lo) && (maxPrice == nil || price <= *maxPrice) {
		return full
	}

	mid := 0.0
	switch {
	case minPrice != nil && maxPrice != nil:
		mid = float64(lo+*maxPrice) / 2
	case maxPrice != nil:
		mid = float64(*maxPrice)
	default:
		mid = float64(lo)
	}
	if mid <= 0 {
		return 0
	}

	deviation := math.Abs(float64(price)-mid) / mid
	return math.Max(0, full*(1-deviation))
}

func (s *Scorer) popularityTerm(totalViews int) float64 {
	ceiling := s.weights.Popularity * 100
	return math.Min(ceiling, float64(totalViews)/100)
}

// ScoreAll scores every candidate in place and stable-sorts descending
// by score, preserving the incoming order among ties.
func (s *Scorer) ScoreAll(candidates []models.ScoredCandidate, prefs models.SearchPreferences) {
	for i := range candidates {
		candidates[i].Score = s.Score(candidates[i], prefs)
	}
	sortByScoreDesc(candidates)
}
