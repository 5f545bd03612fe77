// internal/catalog/elastic.go
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticCatalog implements Catalog over an Elasticsearch listings index,
// for installations that mirror the catalog there. Semantics match the
// Postgres adapter: same filter dimensions, same pagination contract.
type ElasticCatalog struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticCatalog(client *elasticsearch.Client, index string, log logger.Logger) *ElasticCatalog {
	return &ElasticCatalog{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "catalog.elastic"}),
	}
}

func (c *ElasticCatalog) Find(ctx context.Context, f Filter) ([]models.PropertyRecord, error) {
	body, _ := json.Marshal(buildESQuery(f))

	from := f.Offset
	size := f.Limit
	if size == 0 {
		size = 10000 // ES default cap; callers always paginate in practice
	}

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("elastic find: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elastic find: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.PropertyRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("elastic decode: %w", err)
	}

	results := make([]models.PropertyRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}

func (c *ElasticCatalog) Count(ctx context.Context, f Filter) (int, error) {
	body, _ := json.Marshal(buildESQuery(f))

	req := esapi.CountRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("elastic count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elastic count: %s", res.Status())
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("elastic decode: %w", err)
	}
	return parsed.Count, nil
}

func (c *ElasticCatalog) GetByID(ctx context.Context, id string) (*models.PropertyRecord, error) {
	req := esapi.GetRequest{
		Index:      c.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("elastic get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, sql.ErrNoRows
	}
	if res.IsError() {
		return nil, fmt.Errorf("elastic get: %s", res.Status())
	}

	var parsed struct {
		Source models.PropertyRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("elastic decode: %w", err)
	}
	return &parsed.Source, nil
}

// buildESQuery translates a Filter into a bool query. Keywords become a
// multi_match across the same fields the Postgres adapter alternates over.
func buildESQuery(f Filter) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if f.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": string(f.Status)},
		})
	}
	if f.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": strings.ToLower(f.Type)},
		})
	}
	if f.Location != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Location,
				"fields": []string{"location^2", "address.city", "address.district"},
				"type":   "best_fields",
			},
		})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rangeBody := map[string]interface{}{}
		if f.MinPrice != nil {
			rangeBody["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			rangeBody["lte"] = *f.MaxPrice
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": rangeBody},
		})
	}
	if len(f.Keywords) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  strings.Join(f.Keywords, " "),
				"fields": []string{"title^3", "description^2", "location", "type"},
				"type":   "best_fields",
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}
