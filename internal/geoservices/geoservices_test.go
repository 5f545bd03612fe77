// internal/geoservices/geoservices_test.go
package geoservices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basobaas-search/internal/common/config"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"
)

// ==========================================
// Helpers
// ==========================================

func geocoderFor(serverURL string) *HTTPGeocoder {
	var cfg config.APIsConfig
	cfg.Geocoding.BaseURL = serverURL
	cfg.Geocoding.Timeout = 2000
	return NewHTTPGeocoder(cfg)
}

func locatorFor(serverURL string) *HTTPIPLocator {
	var cfg config.APIsConfig
	cfg.IPLocation.BaseURL = serverURL
	cfg.IPLocation.Timeout = 2000
	return NewHTTPIPLocator(cfg)
}

type stubGeocoder struct {
	loc *models.UserLocation
	err error
}

func (s *stubGeocoder) Geocode(ctx context.Context, place string) (*models.UserLocation, error) {
	return s.loc, s.err
}

type stubLocator struct {
	loc *models.UserLocation
	err error
}

func (s *stubLocator) Locate(ctx context.Context, ip string) (*models.UserLocation, error) {
	return s.loc, s.err
}

// ==========================================
// Geocoder Tests
// ==========================================

func TestHTTPGeocoderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "patan", r.URL.Query().Get("q"))
		assert.Equal(t, "np", r.URL.Query().Get("countrycodes"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"27.6726","lon":"85.3239"}]`))
	}))
	defer server.Close()

	loc, err := geocoderFor(server.URL).Geocode(context.Background(), "patan")

	require.NoError(t, err)
	assert.InDelta(t, 27.6726, loc.Latitude, 0.0001)
	assert.InDelta(t, 85.3239, loc.Longitude, 0.0001)
	assert.Equal(t, "geocoded", loc.Source)
}

func TestHTTPGeocoderNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := geocoderFor(server.URL).Geocode(context.Background(), "atlantis")
	assert.Error(t, err)
}

func TestHTTPGeocoderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := geocoderFor(server.URL).Geocode(context.Background(), "patan")
	assert.Error(t, err)
}

// ==========================================
// IP Locator Tests
// ==========================================

func TestHTTPIPLocatorSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/27.34.65.10", r.URL.Path)
		w.Write([]byte(`{"status":"success","lat":27.7,"lon":85.32}`))
	}))
	defer server.Close()

	loc, err := locatorFor(server.URL).Locate(context.Background(), "27.34.65.10")

	require.NoError(t, err)
	assert.InDelta(t, 27.7, loc.Latitude, 0.0001)
	assert.Equal(t, "ip", loc.Source)
}

func TestHTTPIPLocatorLookupFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer server.Close()

	_, err := locatorFor(server.URL).Locate(context.Background(), "192.168.1.1")
	assert.Error(t, err)
}

// ==========================================
// Resolver Tests
// ==========================================

func TestResolverPrefersExplicitCoordinates(t *testing.T) {
	lat, lon := 27.68, 85.35
	r := NewResolver(
		&stubGeocoder{err: errors.New("should not be called")},
		&stubLocator{err: errors.New("should not be called")},
		logger.NewTestLogger(t),
	)

	got := r.Resolve(context.Background(), ResolveRequest{Latitude: &lat, Longitude: &lon, Place: "patan"})

	assert.Equal(t, 27.68, got.Latitude)
	assert.Equal(t, "gps", got.Source)
}

func TestResolverGeocodesPlaceName(t *testing.T) {
	r := NewResolver(
		&stubGeocoder{loc: &models.UserLocation{Latitude: 27.67, Longitude: 85.32, Source: "geocoded"}},
		&stubLocator{err: errors.New("should not be called")},
		logger.NewTestLogger(t),
	)

	got := r.Resolve(context.Background(), ResolveRequest{Place: "patan"})

	assert.Equal(t, "geocoded", got.Source)
	assert.InDelta(t, 27.67, got.Latitude, 0.0001)
}

func TestResolverFallsThroughToIP(t *testing.T) {
	r := NewResolver(
		&stubGeocoder{err: errors.New("upstream down")},
		&stubLocator{loc: &models.UserLocation{Latitude: 27.7, Longitude: 85.3, Source: "ip"}},
		logger.NewTestLogger(t),
	)

	got := r.Resolve(context.Background(), ResolveRequest{Place: "patan", ClientIP: "27.34.65.10", UseIP: true})

	assert.Equal(t, "ip", got.Source)
}

func TestResolverDefaultsToKathmandu(t *testing.T) {
	r := NewResolver(
		&stubGeocoder{err: errors.New("upstream down")},
		&stubLocator{err: errors.New("upstream down")},
		logger.NewTestLogger(t),
	)

	got := r.Resolve(context.Background(), ResolveRequest{Place: "nowhere", ClientIP: "10.0.0.1", UseIP: true})

	assert.Equal(t, "default", got.Source)
	assert.InDelta(t, 27.7172, got.Latitude, 0.0001)
	assert.InDelta(t, 85.3240, got.Longitude, 0.0001)
}

func TestResolverIPRequiresOptIn(t *testing.T) {
	r := NewResolver(
		nil,
		&stubLocator{loc: &models.UserLocation{Latitude: 27.7, Longitude: 85.3, Source: "ip"}},
		logger.NewTestLogger(t),
	)

	got := r.Resolve(context.Background(), ResolveRequest{ClientIP: "27.34.65.10", UseIP: false})

	assert.Equal(t, "default", got.Source)
}
