package dto

import (
	"net/http"
	"strings"
)

// General error codes used directly by the HTTP layer. Domain errors
// carry their own codes (NOT_FOUND, INVALID_STATE, ...) which are
// passed through unchanged.
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":    http.StatusUnprocessableEntity,
	"MISSING_RELATION": http.StatusUnprocessableEntity,
	"NOT_DUE":          http.StatusUnprocessableEntity,

	// Allocation retries ran out; the client may simply try again
	"NUMBER_ALLOCATION_EXHAUSTED": http.StatusConflict,

	// Input errors
	"INVALID_INPUT": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Validation codes follow the INVALID_<FIELD> convention and map to
// 400; anything else unknown is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
