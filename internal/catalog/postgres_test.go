// internal/catalog/postgres_test.go
package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"
)

var propertyRows = []string{
	"id", "title", "description", "location", "street", "city", "district", "ward",
	"type", "price", "latitude", "longitude", "geo_accuracy",
	"status", "views_total", "views_logged_in", "views_anonymous", "featured",
}

func newMockCatalog(t *testing.T) (*PostgresCatalog, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresCatalog(db, logger.NewTestLogger(t)), mock
}

func addFullRow(rows *sqlmock.Rows) *sqlmock.Rows {
	return rows.AddRow(
		"p1", "Cozy room", "A warm room", "Patan", "Mangal Bazaar", "Lalitpur", "Lalitpur", "16",
		"room", 12000, 27.6726, 85.3239, "rooftop",
		"available", 340, 120, 220, true,
	)
}

func addBareRow(rows *sqlmock.Rows) *sqlmock.Rows {
	return rows.AddRow(
		"p2", "Flat listing", "", "Kathmandu", nil, nil, nil, nil,
		"flat", 25000, nil, nil, nil,
		"available", 0, 0, 0, false,
	)
}

func TestFindMapsRows(t *testing.T) {
	cat, mock := newMockCatalog(t)

	rows := sqlmock.NewRows(propertyRows)
	addFullRow(rows)
	addBareRow(rows)

	mock.ExpectQuery("(?s)SELECT (.+) FROM properties WHERE status = \\$1 ORDER BY featured DESC, views_total DESC, id LIMIT \\$2").
		WithArgs("available", 10).
		WillReturnRows(rows)

	got, err := cat.Find(context.Background(), Filter{Status: models.StatusAvailable, Limit: 10})

	require.NoError(t, err)
	require.Len(t, got, 2)

	full := got[0]
	assert.Equal(t, "p1", full.ID)
	assert.Equal(t, models.TypeRoom, full.Type)
	require.NotNil(t, full.Coordinate)
	assert.InDelta(t, 27.6726, full.Coordinate.Latitude, 0.0001)
	require.NotNil(t, full.Address)
	assert.Equal(t, "Lalitpur", full.Address.City)
	assert.Equal(t, 340, full.Views.Total)
	assert.True(t, full.Featured)

	bare := got[1]
	assert.Nil(t, bare.Coordinate, "missing latitude/longitude means no coordinate")
	assert.Nil(t, bare.Address)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBuildsStrictFilter(t *testing.T) {
	cat, mock := newMockCatalog(t)
	min, max := 10000, 20000

	mock.ExpectQuery(`(?s)SELECT (.+) FROM properties WHERE status = \$1 AND LOWER\(type\) = LOWER\(\$2\) AND \(location ILIKE \$3 OR city ILIKE \$3 OR district ILIKE \$3\) AND price >= \$4 AND price <= \$5 ORDER BY`).
		WithArgs("available", "room", "%patan%", 10000, 20000).
		WillReturnRows(sqlmock.NewRows(propertyRows))

	_, err := cat.Find(context.Background(), Filter{
		Status:   models.StatusAvailable,
		Type:     "room",
		Location: "patan",
		MinPrice: &min,
		MaxPrice: &max,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBuildsKeywordAlternation(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(`(?s)SELECT (.+) FROM properties WHERE status = \$1 AND \(title ILIKE \$2 OR description ILIKE \$2 OR location ILIKE \$2 OR type ILIKE \$2 OR title ILIKE \$3 OR description ILIKE \$3 OR location ILIKE \$3 OR type ILIKE \$3\)`).
		WithArgs("available", "%cozy%", "%boudha%").
		WillReturnRows(sqlmock.NewRows(propertyRows))

	_, err := cat.Find(context.Background(), Filter{
		Status:   models.StatusAvailable,
		Keywords: []string{"cozy", "boudha"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountIgnoresPagination(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM properties WHERE status = \$1`).
		WithArgs("available").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := cat.Count(context.Background(), Filter{
		Status: models.StatusAvailable,
		Limit:  10,
		Offset: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	cat, mock := newMockCatalog(t)

	rows := sqlmock.NewRows(propertyRows)
	addFullRow(rows)
	mock.ExpectQuery(`(?s)SELECT (.+) FROM properties WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(rows)

	got, err := cat.GetByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	cat, mock := newMockCatalog(t)

	mock.ExpectQuery(`(?s)SELECT (.+) FROM properties WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(propertyRows))

	_, err := cat.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
