// internal/api/handlers.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"basobaas-search/internal/cache"
	"basobaas-search/internal/common/config"
	stderrors "basobaas-search/internal/common/errors"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
	"basobaas-search/internal/engine"
	"basobaas-search/internal/geoservices"
	"basobaas-search/internal/interpreter"
	"basobaas-search/internal/models"
)

// Handler wires the engine components behind the HTTP surface.
type Handler struct {
	searcher    *engine.Searcher
	recommender *engine.Recommender
	interpreter *interpreter.Interpreter
	resolver    *geoservices.Resolver
	cache       *cache.ResultCache
	cfg         config.SearchConfig
	logger      logger.Logger
}

func NewHandler(
	searcher *engine.Searcher,
	recommender *engine.Recommender,
	interp *interpreter.Interpreter,
	resolver *geoservices.Resolver,
	resultCache *cache.ResultCache,
	cfg config.SearchConfig,
	log logger.Logger,
) *Handler {
	return &Handler{
		searcher:    searcher,
		recommender: recommender,
		interpreter: interp,
		resolver:    resolver,
		cache:       resultCache,
		cfg:         cfg,
		logger:      log,
	}
}

// Search handles POST /api/search.
func (h *Handler) Search(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.respondError(c, "search", stderrors.NewInvalidInputError("unreadable body"))
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	req, perr := ParseSearchRequest(body)
	if perr != nil {
		h.respondError(c, "search", perr)
		return
	}

	page, limit := clampPagination(req.Page, req.Limit, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	parsed := models.ParsedQuery{Keywords: []string{}}
	if req.Query != "" {
		parsed = h.interpreter.Interpret(c.Request.Context(), req.Query)
	}
	applyOverrides(&parsed, req)

	key := cache.Key(req.Query+"|"+cacheSuffix(parsed), 0, 0, page, limit)
	var cached engine.SearchResult
	if h.cache.Get(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, serr := h.searcher.Search(c.Request.Context(), req.Query, parsed, page, limit)
	if serr != nil {
		h.respondError(c, "search", serr)
		return
	}

	h.cache.Set(c.Request.Context(), key, result)
	c.JSON(http.StatusOK, result)
}

// Nearby handles GET /api/properties/nearby. Latitude and longitude are
// required; everything else has a default.
func (h *Handler) Nearby(c *gin.Context) {
	lat, latErr := parseFloatParam(c.Query("latitude"))
	lon, lonErr := parseFloatParam(c.Query("longitude"))
	if latErr != nil || lonErr != nil {
		h.respondError(c, "nearby", stderrors.NewInvalidInputError("latitude and longitude must be numbers"))
		return
	}
	if lat == nil || lon == nil {
		h.respondError(c, "nearby", stderrors.NewMissingCoordinateError())
		return
	}

	radius := h.cfg.NearbyRadiusKm
	if r, err := parseFloatParam(c.Query("radius")); err != nil {
		h.respondError(c, "nearby", stderrors.NewInvalidInputError("radius must be a number"))
		return
	} else if r != nil && *r > 0 {
		radius = *r
	}

	page, limit, prefs, perr := h.listParams(c)
	if perr != nil {
		h.respondError(c, "nearby", perr)
		return
	}

	loc := models.UserLocation{Latitude: *lat, Longitude: *lon, Source: "gps"}
	result, err := h.recommender.Nearby(c.Request.Context(), loc, prefs, radius, page, limit)
	if err != nil {
		h.respondError(c, "nearby", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Recommendations handles GET /api/recommendations. The coordinate is
// optional here: explicit lat/lon, then a place name, then the client
// IP when fromIP=1, then no coordinate at all.
func (h *Handler) Recommendations(c *gin.Context) {
	lat, latErr := parseFloatParam(c.Query("latitude"))
	lon, lonErr := parseFloatParam(c.Query("longitude"))
	if latErr != nil || lonErr != nil {
		h.respondError(c, "recommendations", stderrors.NewInvalidInputError("latitude and longitude must be numbers"))
		return
	}

	page, limit, prefs, perr := h.listParams(c)
	if perr != nil {
		h.respondError(c, "recommendations", perr)
		return
	}

	radius := h.cfg.RecommendRadius
	if r, err := parseFloatParam(c.Query("radius")); err != nil {
		h.respondError(c, "recommendations", stderrors.NewInvalidInputError("radius must be a number"))
		return
	} else if r != nil && *r > 0 {
		radius = *r
	}

	place := c.Query("location")
	fromIP := c.Query("fromIP") == "1"

	var loc *models.UserLocation
	if lat != nil && lon != nil {
		loc = &models.UserLocation{Latitude: *lat, Longitude: *lon, Source: "gps"}
	} else if place != "" || fromIP {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		resolved := h.resolver.Resolve(ctx, geoservices.ResolveRequest{
			Place:    place,
			ClientIP: c.ClientIP(),
			UseIP:    fromIP,
		})
		loc = &resolved
	}

	result, err := h.recommender.Recommend(c.Request.Context(), loc, prefs, radius, page, limit)
	if err != nil {
		h.respondError(c, "recommendations", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Similar handles GET /api/properties/:id/similar.
func (h *Handler) Similar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		h.respondError(c, "similar", stderrors.NewInvalidInputError("missing property id"))
		return
	}

	limit := h.cfg.DefaultLimit
	if l, err := parseIntParam(c.Query("limit")); err != nil {
		h.respondError(c, "similar", stderrors.NewInvalidInputError("limit must be an integer"))
		return
	} else if l != nil {
		_, limit = clampPagination(1, *l, h.cfg.DefaultLimit, h.cfg.MaxLimit)
	}

	result, err := h.recommender.Similar(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, "similar", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// listParams reads the pagination and preference query parameters
// shared by the recommendation endpoints.
func (h *Handler) listParams(c *gin.Context) (int, int, models.SearchPreferences, error) {
	var prefs models.SearchPreferences

	page := 1
	if p, err := parseIntParam(c.Query("page")); err != nil {
		return 0, 0, prefs, stderrors.NewInvalidPaginationError("page must be an integer")
	} else if p != nil {
		page = *p
	}

	limit := 0
	if l, err := parseIntParam(c.Query("limit")); err != nil {
		return 0, 0, prefs, stderrors.NewInvalidPaginationError("limit must be an integer")
	} else if l != nil {
		limit = *l
	}
	if page < 1 {
		return 0, 0, prefs, stderrors.NewInvalidPaginationError("page must be at least 1")
	}
	page, limit = clampPagination(page, limit, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	if t := c.Query("type"); t != "" {
		pt := models.PropertyType(t)
		prefs.Type = &pt
	}

	var err error
	if prefs.MinPrice, err = parseIntParam(c.Query("minPrice")); err != nil {
		return 0, 0, prefs, stderrors.NewInvalidInputError("minPrice must be an integer")
	}
	if prefs.MaxPrice, err = parseIntParam(c.Query("maxPrice")); err != nil {
		return 0, 0, prefs, stderrors.NewInvalidInputError("maxPrice must be an integer")
	}

	return page, limit, prefs, nil
}

// applyOverrides lets explicit structured fields win over the
// interpreter's reading of the free text.
func applyOverrides(parsed *models.ParsedQuery, req *SearchRequest) {
	if req.Location != nil && *req.Location != "" {
		parsed.Location = req.Location
	}
	if req.Type != nil && *req.Type != "" {
		parsed.Type = req.Type
	}
	if req.MinPrice != nil {
		parsed.MinPrice = req.MinPrice
	}
	if req.MaxPrice != nil {
		parsed.MaxPrice = req.MaxPrice
	}
}

// cacheSuffix folds the structured filters into the cache key so two
// requests with the same text but different overrides never collide.
func cacheSuffix(parsed models.ParsedQuery) string {
	s := ""
	if parsed.Location != nil {
		s += *parsed.Location
	}
	s += "|"
	if parsed.Type != nil {
		s += *parsed.Type
	}
	s += "|"
	if parsed.MinPrice != nil {
		s += strconv.Itoa(*parsed.MinPrice)
	}
	s += "|"
	if parsed.MaxPrice != nil {
		s += strconv.Itoa(*parsed.MaxPrice)
	}
	return s
}

func (h *Handler) respondError(c *gin.Context, endpoint string, err error) {
	var stdErr *stderrors.StandardError
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	if e, ok := err.(*stderrors.StandardError); ok {
		stdErr = e
		status = stderrors.HTTPStatus(e.Code)
		code = string(e.Code)
	} else {
		stdErr = stderrors.NewCatalogQueryFailedError(endpoint, err)
	}

	metrics.SearchRequestsFailed.WithLabelValues(endpoint, code).Inc()
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed", map[string]interface{}{
			"endpoint": endpoint,
		})
	}

	c.JSON(status, gin.H{"error": stdErr})
}
