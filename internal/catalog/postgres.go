// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"
)

const propertyColumns = `
	id, title, description, location, street, city, district, ward,
	type, price, latitude, longitude, geo_accuracy,
	status, views_total, views_logged_in, views_anonymous, featured`

// PostgresCatalog implements Catalog against the marketplace's listings table.
type PostgresCatalog struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresCatalog(db *sql.DB, log logger.Logger) *PostgresCatalog {
	return &PostgresCatalog{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog.postgres"}),
	}
}

// Find returns the property records matching the filter, paginated.
func (c *PostgresCatalog) Find(ctx context.Context, f Filter) ([]models.PropertyRecord, error) {
	where, args := buildWhere(f)

	query := fmt.Sprintf(`SELECT %s FROM properties %s ORDER BY featured DESC, views_total DESC, id`,
		propertyColumns, where)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog find: %w", err)
	}
	defer rows.Close()

	var results []models.PropertyRecord
	for rows.Next() {
		rec, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog scan: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}

	return results, nil
}

// Count returns the total number of records matching the filter,
// ignoring pagination.
func (c *PostgresCatalog) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)

	var total int
	err := c.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM properties %s", where), args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	return total, nil
}

// GetByID fetches a single property record.
func (c *PostgresCatalog) GetByID(ctx context.Context, id string) (*models.PropertyRecord, error) {
	row := c.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM properties WHERE id = $1", propertyColumns), id)

	rec, err := scanProperty(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("catalog get: %w", err)
	}
	return &rec, nil
}

// buildWhere assembles the WHERE clause and positional args for a filter.
// Location matches the free-text label plus the structured city/district;
// keywords become one grouped alternation across the text fields.
func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(string(f.Status))))
	}
	if f.Type != "" {
		conds = append(conds, fmt.Sprintf("LOWER(type) = LOWER(%s)", arg(f.Type)))
	}
	if f.Location != "" {
		p := arg("%" + f.Location + "%")
		conds = append(conds, fmt.Sprintf(
			"(location ILIKE %s OR city ILIKE %s OR district ILIKE %s)", p, p, p))
	}
	if f.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= %s", arg(*f.MinPrice)))
	}
	if f.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= %s", arg(*f.MaxPrice)))
	}
	if len(f.Keywords) > 0 {
		var kw []string
		for _, word := range f.Keywords {
			p := arg("%" + word + "%")
			kw = append(kw, fmt.Sprintf(
				"title ILIKE %s OR description ILIKE %s OR location ILIKE %s OR type ILIKE %s",
				p, p, p, p))
		}
		conds = append(conds, "("+strings.Join(kw, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (models.PropertyRecord, error) {
	var rec models.PropertyRecord
	var street, city, district, ward sql.NullString
	var lat, lon sql.NullFloat64
	var accuracy sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Description, &rec.Location,
		&street, &city, &district, &ward,
		&rec.Type, &rec.Price, &lat, &lon, &accuracy,
		&rec.Status, &rec.Views.Total, &rec.Views.LoggedIn, &rec.Views.Anonymous,
		&rec.Featured,
	)
	if err != nil {
		return rec, err
	}

	if street.Valid || city.Valid || district.Valid || ward.Valid {
		rec.Address = &models.Address{
			Street:   street.String,
			City:     city.String,
			District: district.String,
			Ward:     ward.String,
		}
	}

	// A coordinate needs both halves; a row with only one is treated as
	// un-geocoded.
	if lat.Valid && lon.Valid {
		rec.Coordinate = &models.Coordinate{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Accuracy:  accuracy.String,
		}
	}

	return rec, nil
}
