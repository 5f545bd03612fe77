// internal/geoservices/iplocator.go
package geoservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"basobaas-search/internal/common/config"
	stderrors "basobaas-search/internal/common/errors"
	"basobaas-search/internal/common/httpx"
	"basobaas-search/internal/models"
)

// HTTPIPLocator calls an ip-api.com style JSON geolocation endpoint.
type HTTPIPLocator struct {
	baseURL string
	client  *httpx.Client
}

func NewHTTPIPLocator(cfg config.APIsConfig) *HTTPIPLocator {
	return &HTTPIPLocator{
		baseURL: cfg.IPLocation.BaseURL,
		client:  httpx.NewClient(config.GetDuration(cfg.IPLocation.Timeout)),
	}
}

type ipLocateResult struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate resolves ip to an approximate coordinate. Private and loopback
// addresses fail here and are handled by the Resolver's fallback.
func (l *HTTPIPLocator) Locate(ctx context.Context, ip string) (*models.UserLocation, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.baseURL+"/json/"+ip, nil)
	if err != nil {
		return nil, stderrors.NewIPLocationFailedError(err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, stderrors.NewIPLocationFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, stderrors.NewIPLocationFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var result ipLocateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, stderrors.NewIPLocationFailedError(err)
	}
	if result.Status != "success" {
		return nil, stderrors.NewIPLocationFailedError(fmt.Errorf("lookup failed: %s", result.Message))
	}

	return &models.UserLocation{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		Source:    "ip",
	}, nil
}
