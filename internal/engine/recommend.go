// internal/engine/recommend.go
package engine

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"basobaas-search/internal/catalog"
	stderrors "basobaas-search/internal/common/errors"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"
)

// Radius defaults in kilometers.
const (
	DefaultNearbyRadiusKm    = 25
	DefaultRecommendRadiusKm = 50
)

// Price band for "similar properties", as a fraction of the source
// listing's price in each direction.
const similarPriceBand = 0.30

// Recommender ranks properties around a coordinate with the composite
// scorer. It shares no state with the text-search path.
type Recommender struct {
	catalog catalog.Catalog
	scorer  *Scorer
	logger  logger.Logger
}

func NewRecommender(cat catalog.Catalog, scorer *Scorer, log logger.Logger) *Recommender {
	return &Recommender{catalog: cat, scorer: scorer, logger: log}
}

// Nearby returns available properties within radiusKm of loc, ranked by
// composite score. The coarse type/price bounds are pushed to the
// catalog; radius filtering and scoring happen in memory because
// distance depends on the request coordinate.
func (r *Recommender) Nearby(ctx context.Context, loc models.UserLocation, prefs models.SearchPreferences, radiusKm float64, page, limit int) (*SearchResult, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	records, err := r.catalog.Find(ctx, coarseFilter(prefs))
	if err != nil {
		return nil, stderrors.NewCatalogQueryFailedError("nearby", err)
	}

	candidates := FilterByRadius(records, loc, radiusKm)
	r.scorer.ScoreAll(candidates, prefs)

	r.logger.Debug("nearby candidates ranked", map[string]interface{}{
		"fetched":  len(records),
		"inRadius": len(candidates),
		"radiusKm": radiusKm,
	})

	return paginate(candidates, page, limit), nil
}

// Recommend is the wider-net variant used by the home feed. A radiusKm
// of zero or less means the 50 km default. Without a coordinate it
// degrades to preference-only ranking and the radius is ignored.
func (r *Recommender) Recommend(ctx context.Context, loc *models.UserLocation, prefs models.SearchPreferences, radiusKm float64, page, limit int) (*SearchResult, error) {
	if loc == nil {
		return r.unlocated(ctx, prefs, page, limit)
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRecommendRadiusKm
	}
	return r.Nearby(ctx, *loc, prefs, radiusKm, page, limit)
}

// unlocated ranks by featured flag then view count, the catalog's own
// order, and assigns every candidate the placeholder score.
func (r *Recommender) unlocated(ctx context.Context, prefs models.SearchPreferences, page, limit int) (*SearchResult, error) {
	records, err := r.catalog.Find(ctx, coarseFilter(prefs))
	if err != nil {
		return nil, stderrors.NewCatalogQueryFailedError("recommend", err)
	}

	candidates := make([]models.ScoredCandidate, 0, len(records))
	for _, p := range records {
		candidates = append(candidates, models.ScoredCandidate{
			PropertyRecord: p,
			Score:          PlaceholderScore,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.Views.Total > b.Views.Total
	})

	return paginate(candidates, page, limit), nil
}

// Similar returns listings of the same type within a price band around
// the given property, ranked by composite score from the property's own
// coordinate when it has one.
func (r *Recommender) Similar(ctx context.Context, propertyID string, limit int) (*SearchResult, error) {
	source, err := r.catalog.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stderrors.NewPropertyNotFoundError(propertyID)
		}
		return nil, stderrors.NewCatalogQueryFailedError("similar", err)
	}

	minPrice := int(float64(source.Price) * (1 - similarPriceBand))
	maxPrice := int(float64(source.Price) * (1 + similarPriceBand))
	prefs := models.SearchPreferences{
		Type:     &source.Type,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	}

	records, err := r.catalog.Find(ctx, coarseFilter(prefs))
	if err != nil {
		return nil, stderrors.NewCatalogQueryFailedError("similar", err)
	}

	others := make([]models.PropertyRecord, 0, len(records))
	for _, p := range records {
		if p.ID != source.ID {
			others = append(others, p)
		}
	}

	var candidates []models.ScoredCandidate
	if source.Coordinate != nil {
		origin := models.UserLocation{
			Latitude:  source.Coordinate.Latitude,
			Longitude: source.Coordinate.Longitude,
		}
		candidates = FilterByRadius(others, origin, DefaultRecommendRadiusKm)
		r.scorer.ScoreAll(candidates, prefs)
	} else {
		candidates = make([]models.ScoredCandidate, 0, len(others))
		for _, p := range others {
			candidates = append(candidates, models.ScoredCandidate{
				PropertyRecord: p,
				Score:          PlaceholderScore,
			})
		}
	}

	return paginate(candidates, 1, limit), nil
}

func coarseFilter(prefs models.SearchPreferences) catalog.Filter {
	f := catalog.Filter{
		Status:   models.StatusAvailable,
		MinPrice: prefs.MinPrice,
		MaxPrice: prefs.MaxPrice,
	}
	if prefs.Type != nil {
		f.Type = string(*prefs.Type)
	}
	return f
}

// paginate slices an already ranked in-memory candidate set.
func paginate(candidates []models.ScoredCandidate, page, limit int) *SearchResult {
	total := len(candidates)
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &SearchResult{
		Properties: candidates[start:end],
		Pagination: models.NewPagination(page, limit, total),
	}
}
