// Package errors provides standardized error handling for the search engine.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Client-side input problems. Rejected immediately, never retried.
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeMissingCoordinate  ErrorCode = "MISSING_COORDINATE"
	ErrCodeInvalidPagination  ErrorCode = "INVALID_PAGINATION"
	ErrCodePropertyNotFound   ErrorCode = "PROPERTY_NOT_FOUND"

	// Catalog store problems.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCatalogQueryFailed       ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogQueryTimeout      ErrorCode = "CATALOG_QUERY_TIMEOUT"

	// Collaborator failures. These are always recovered locally via a
	// documented fallback and never propagated to the caller.
	ErrCodeGeocodingFailed   ErrorCode = "GEOCODING_FAILED"
	ErrCodeGeocodingTimeout  ErrorCode = "GEOCODING_TIMEOUT"
	ErrCodeIPLocationFailed  ErrorCode = "IP_LOCATION_FAILED"
	ErrCodeLLMTimeout        ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMParsingFailed  ErrorCode = "LLM_PARSING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable client input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid request input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCoordinateError flags a nearby request without latitude/longitude.
func NewMissingCoordinateError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCoordinate,
		Message:   "latitude and longitude are required for nearby search",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPaginationError flags malformed page/limit values.
func NewInvalidPaginationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPagination,
		Message:   "Malformed pagination values",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPropertyNotFoundError flags an unknown reference property id.
func NewPropertyNotFoundError(propertyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePropertyNotFound,
		Message:   "Property not found",
		Details:   fmt.Sprintf("propertyId: %s", propertyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a retryable catalog query error.
func NewCatalogQueryFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Catalog query error",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryTimeoutError creates a retryable catalog timeout error.
func NewCatalogQueryTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryTimeout,
		Message:   "Catalog query timeout",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodingFailedError records a geocoder failure. Callers fall back to
// the default city coordinate.
func NewGeocodingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodingFailed,
		Message:   "Geocoding service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodingTimeoutError records a geocoder timeout.
func NewGeocodingTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodingTimeout,
		Message:   "Geocoding service timeout",
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIPLocationFailedError records an IP locator failure.
func NewIPLocationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIPLocationFailed,
		Message:   "IP location service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError records a language-model timeout. The interpreter
// falls through to the deterministic parser.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Language model timeout",
		Details:   "completion call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMParsingFailedError records an unparseable language-model response.
func NewLLMParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMParsingFailed,
		Message:   "Language model response could not be parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the status the API layer should return.
// Collaborator codes are recovered before the API layer; if one surfaces
// anyway it maps to 502.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeMissingCoordinate, ErrCodeInvalidPagination:
		return http.StatusBadRequest
	case ErrCodePropertyNotFound:
		return http.StatusNotFound
	case ErrCodeDatabaseConnectionFailed, ErrCodeCatalogQueryFailed, ErrCodeCatalogQueryTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// IsClientError reports whether the code represents an InvalidInput-class
// failure the caller must fix.
func IsClientError(code ErrorCode) bool {
	return HTTPStatus(code) == http.StatusBadRequest || code == ErrCodePropertyNotFound
}
