// internal/models/property.go
package models

import "time"

// PropertyType enumerates the listing types the catalog knows about.
type PropertyType string

const (
	TypeRoom      PropertyType = "room"
	TypeFlat      PropertyType = "flat"
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
)

// PropertyStatus is the availability state of a listing.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusBooked    PropertyStatus = "booked"
	StatusInactive  PropertyStatus = "inactive"
)

// Coordinate is a geocoded point attached to a listing. Latitude and
// longitude are always set together; a listing either has both or has
// no Coordinate at all.
type Coordinate struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  string     `json:"accuracy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Address is the optional structured address of a listing.
type Address struct {
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	Ward     string `json:"ward,omitempty"`
}

// ViewCounters aggregates how often a listing has been opened.
type ViewCounters struct {
	Total     int `json:"total"`
	LoggedIn  int `json:"loggedIn"`
	Anonymous int `json:"anonymous"`
}

// PropertyRecord is a read-only catalog row. The engine never mutates
// or persists these; it derives request-scoped ScoredCandidates from them.
// Price is a whole NPR amount and is never negative.
type PropertyRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Address     *Address       `json:"address,omitempty"`
	Type        PropertyType   `json:"type"`
	Price       int            `json:"price"`
	Coordinate  *Coordinate    `json:"coordinate,omitempty"`
	Status      PropertyStatus `json:"status"`
	Views       ViewCounters   `json:"views"`
	Featured    bool           `json:"featured"`
}

// UserLocation is the requester's coordinate, supplied per request and
// never persisted by the engine.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source,omitempty"` // gps | ip | default
}

// SearchPreferences are the optional structured filters of a request.
// A nil field means "do not filter or score on this dimension".
type SearchPreferences struct {
	Type     *PropertyType `json:"type,omitempty"`
	MinPrice *int          `json:"minPrice,omitempty"`
	MaxPrice *int          `json:"maxPrice,omitempty"`
	Features []string      `json:"features,omitempty"`
	Keywords string        `json:"keywords,omitempty"`
}

// ScoredCandidate is a PropertyRecord plus the two request-scoped
// derived fields. Created fresh per request, discarded with the response.
type ScoredCandidate struct {
	PropertyRecord
	DistanceKm *float64 `json:"distanceKm"`
	Score      int      `json:"score"`
}

// ParsedQuery is the interpreter's structured reading of a free-text
// query. Nil fields mean the query said nothing about that dimension.
type ParsedQuery struct {
	Location *string  `json:"location"`
	Type     *string  `json:"type"`
	MinPrice *int     `json:"minPrice"`
	MaxPrice *int     `json:"maxPrice"`
	Keywords []string `json:"keywords"`
}

// Pagination is the page metadata returned with every result set.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalProperties int  `json:"totalProperties"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPrevPage     bool `json:"hasPrevPage"`
}

// NewPagination computes page metadata from a total row count.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = 1
	}
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalProperties: total,
		HasNextPage:     page < totalPages,
		HasPrevPage:     page > 1,
	}
}
