// internal/engine/weights.go

// Package engine holds the ranking core: radius filtering, the two
// scoring formulas and the search/recommendation orchestrators.
//
// There are two independent scorers. The composite scorer
// ranks the coordinate-driven recommendation paths; the text-relevance
// scorer ranks free-text search results. They answer different
// questions and are never combined.
package engine

// ScoringWeights are the fixed term weights of the composite scorer.
// They are wired in as data so tests can run alternate sets; production
// always uses DefaultWeights.
type ScoringWeights struct {
	Distance      float64
	Price         float64
	Type          float64
	Popularity    float64
	FeaturedBonus float64
}

func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Distance:      0.4,
		Price:         0.3,
		Type:          0.2,
		Popularity:    0.1,
		FeaturedBonus: 5,
	}
}

// PlaceholderScore marks candidates ranked without a user coordinate,
// where the composite formula has nothing to work with.
const PlaceholderScore = 75
