// internal/geoservices/geocoder.go
package geoservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"basobaas-search/internal/common/config"
	stderrors "basobaas-search/internal/common/errors"
	"basobaas-search/internal/common/httpx"
	"basobaas-search/internal/models"
)

// HTTPGeocoder calls a Nominatim-compatible forward geocoding endpoint.
type HTTPGeocoder struct {
	baseURL string
	apiKey  string
	client  *httpx.Client
}

func NewHTTPGeocoder(cfg config.APIsConfig) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL: cfg.Geocoding.BaseURL,
		apiKey:  cfg.Geocoding.APIKey,
		client:  httpx.NewClient(config.GetDuration(cfg.Geocoding.Timeout)),
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves place to a coordinate. Nepal-only results; the first
// hit is taken as authoritative.
func (g *HTTPGeocoder) Geocode(ctx context.Context, place string) (*models.UserLocation, error) {
	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "np")
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, stderrors.NewGeocodingFailedError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, stderrors.NewGeocodingTimeoutError()
		}
		return nil, stderrors.NewGeocodingFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, stderrors.NewGeocodingFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, stderrors.NewGeocodingFailedError(err)
	}
	if len(results) == 0 {
		return nil, stderrors.NewGeocodingFailedError(fmt.Errorf("no results for %q", place))
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, stderrors.NewGeocodingFailedError(fmt.Errorf("malformed coordinate for %q", place))
	}

	return &models.UserLocation{
		Latitude:  lat,
		Longitude: lon,
		Source:    "geocoded",
	}, nil
}
