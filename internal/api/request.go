// internal/api/request.go
package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	stderrors "basobaas-search/internal/common/errors"
)

// SearchRequest is the POST /api/search body. Free text and structured
// filters can be combined; explicit structured fields win over whatever
// the interpreter reads out of the text.
type SearchRequest struct {
	Query    string  `json:"query"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
	Location *string `json:"location"`
	Type     *string `json:"type"`
	MinPrice *int    `json:"minPrice"`
	MaxPrice *int    `json:"maxPrice"`
}

var searchRequestSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"query":    {"type": "string", "maxLength": 500},
		"page":     {"type": "integer", "minimum": 1},
		"limit":    {"type": "integer", "minimum": 1, "maximum": 100},
		"location": {"type": ["string", "null"], "maxLength": 200},
		"type":     {"type": ["string", "null"], "enum": ["room", "flat", "apartment", "house", null]},
		"minPrice": {"type": ["integer", "null"], "minimum": 0},
		"maxPrice": {"type": ["integer", "null"], "minimum": 0}
	},
	"additionalProperties": false
}`)

// ParseSearchRequest validates the raw body against the schema before
// decoding it, so malformed payloads fail with a field-level message.
func ParseSearchRequest(body []byte) (*SearchRequest, error) {
	result, err := gojsonschema.Validate(searchRequestSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, stderrors.NewInvalidInputError(fmt.Sprintf("malformed JSON: %v", err))
	}
	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += desc.String()
		}
		return nil, stderrors.NewInvalidInputError(details)
	}

	var req SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, stderrors.NewInvalidInputError(err.Error())
	}
	return &req, nil
}

// clampPagination fills in defaults and caps the page size.
func clampPagination(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// parseFloatParam reads an optional float query parameter, returning
// nil when absent.
func parseFloatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return &v, nil
}

func parseIntParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}
	return &v, nil
}
