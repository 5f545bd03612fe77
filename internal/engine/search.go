// internal/engine/search.go
package engine

import (
	"context"

	"basobaas-search/internal/catalog"
	stderrors "basobaas-search/internal/common/errors"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
	"basobaas-search/internal/models"
)

// SearchParams echoes back how a free-text request was understood.
type SearchParams struct {
	OriginalQuery  string             `json:"originalQuery"`
	ParsedQuery    models.ParsedQuery `json:"parsedQuery"`
	FiltersApplied []string           `json:"filtersApplied"`
	BroadStage     bool               `json:"broadStage"`
}

// SearchResult is the ranked, paginated outcome of either orchestrator.
type SearchResult struct {
	Properties []models.ScoredCandidate `json:"properties"`
	Pagination models.Pagination        `json:"pagination"`
	Params     *SearchParams            `json:"searchParams,omitempty"`
}

// Searcher runs the two-stage free-text search: a strict structured
// query first, broadened to a keyword alternation only when the strict
// stage matches nothing at all.
type Searcher struct {
	catalog catalog.Catalog
	logger  logger.Logger
}

func NewSearcher(cat catalog.Catalog, log logger.Logger) *Searcher {
	return &Searcher{catalog: cat, logger: log}
}

// Search executes the strict stage built from parsed, falling back to
// the broad stage on an empty result. Candidates from whichever stage
// ran are ranked by text relevance against the original query.
func (s *Searcher) Search(ctx context.Context, originalQuery string, parsed models.ParsedQuery, page, limit int) (*SearchResult, error) {
	offset := (page - 1) * limit

	strict := strictFilter(parsed, limit, offset)
	total, err := s.catalog.Count(ctx, strict)
	if err != nil {
		return nil, stderrors.NewCatalogQueryFailedError("strict", err)
	}

	filter := strict
	broadStage := false
	if total == 0 {
		metrics.BroadStageFallbacks.Inc()
		s.logger.Info("strict stage empty, broadening", map[string]interface{}{
			"query": originalQuery,
		})

		filter = broadFilter(originalQuery, parsed, limit, offset)
		total, err = s.catalog.Count(ctx, filter)
		if err != nil {
			return nil, stderrors.NewCatalogQueryFailedError("broad", err)
		}
		broadStage = true
	}

	records, err := s.catalog.Find(ctx, filter)
	if err != nil {
		stage := "strict"
		if broadStage {
			stage = "broad"
		}
		return nil, stderrors.NewCatalogQueryFailedError(stage, err)
	}

	words := Tokenize(originalQuery)
	candidates := make([]models.ScoredCandidate, 0, len(records))
	for _, p := range records {
		candidates = append(candidates, models.ScoredCandidate{
			PropertyRecord: p,
			Score:          TextRelevance(p, originalQuery, words),
		})
	}
	sortByScoreDesc(candidates)

	return &SearchResult{
		Properties: candidates,
		Pagination: models.NewPagination(page, limit, total),
		Params: &SearchParams{
			OriginalQuery:  originalQuery,
			ParsedQuery:    parsed,
			FiltersApplied: appliedFilters(parsed, broadStage),
			BroadStage:     broadStage,
		},
	}, nil
}

func strictFilter(parsed models.ParsedQuery, limit, offset int) catalog.Filter {
	f := catalog.Filter{
		Status:   models.StatusAvailable,
		MinPrice: parsed.MinPrice,
		MaxPrice: parsed.MaxPrice,
		Limit:    limit,
		Offset:   offset,
	}
	if parsed.Location != nil {
		f.Location = *parsed.Location
	}
	if parsed.Type != nil {
		f.Type = *parsed.Type
	}
	return f
}

// broadFilter keeps the parsed price bounds but swaps all text matching
// for one alternation over the query's own words.
func broadFilter(originalQuery string, parsed models.ParsedQuery, limit, offset int) catalog.Filter {
	return catalog.Filter{
		Status:   models.StatusAvailable,
		MinPrice: parsed.MinPrice,
		MaxPrice: parsed.MaxPrice,
		Keywords: Tokenize(originalQuery),
		Limit:    limit,
		Offset:   offset,
	}
}

func appliedFilters(parsed models.ParsedQuery, broadStage bool) []string {
	applied := []string{"status"}
	if broadStage {
		applied = append(applied, "keywords")
	} else {
		if parsed.Location != nil {
			applied = append(applied, "location")
		}
		if parsed.Type != nil {
			applied = append(applied, "type")
		}
	}
	if parsed.MinPrice != nil {
		applied = append(applied, "minPrice")
	}
	if parsed.MaxPrice != nil {
		applied = append(applied, "maxPrice")
	}
	return applied
}
