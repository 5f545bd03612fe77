// internal/catalog/catalog.go
package catalog

import (
	"context"

	"basobaas-search/internal/models"
)

// Filter is the coarse structured query the engine hands to the
// persistence layer. Zero values mean "no constraint on this dimension";
// Keywords, when set, adds a single case-insensitive alternation over
// title, description, location and type (the broad search stage).
type Filter struct {
	Status   models.PropertyStatus
	Type     string
	Location string
	MinPrice *int
	MaxPrice *int
	Keywords []string
	Limit    int
	Offset   int
}

// Catalog is the read-only query interface over the property store.
// The engine's core logic depends only on this, so tests run against
// in-memory fakes.
type Catalog interface {
	Find(ctx context.Context, f Filter) ([]models.PropertyRecord, error)
	Count(ctx context.Context, f Filter) (int, error)
	GetByID(ctx context.Context, id string) (*models.PropertyRecord, error)
}
