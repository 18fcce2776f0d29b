// Package apierrors contains the error types returned by services and written
// to API responses.
package apierrors

import (
	"encoding/json"
	"net/http"
)

// APIError represents an error that maps directly to an API response.
type APIError struct {
	detail         error
	httpStatusCode int
}

// APIErrorOption determines the Functional Options used to create a new APIError.
type APIErrorOption func(apiError *APIError)

// WithDetail determines the underlying error that details the failure.
func WithDetail(err error) APIErrorOption {
	return func(apiError *APIError) {
		apiError.detail = err
	}
}

// WithHTTPStatusCode determines the HTTP status code associated to the error.
func WithHTTPStatusCode(statusCode int) APIErrorOption {
	return func(apiError *APIError) {
		apiError.httpStatusCode = statusCode
	}
}

// NewAPIError creates a new APIError using the given options.
func NewAPIError(opts ...APIErrorOption) *APIError {
	apiError := &APIError{httpStatusCode: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

func (a APIError) Error() string {
	if a.detail == nil {
		return "an unexpected error occurred"
	}
	return a.detail.Error()
}

// Unwrap returns the detail error, so callers can match against the domain
// error constants with errors.Is.
func (a APIError) Unwrap() error {
	return a.detail
}

// HTTPStatusCode gets the HTTP status code associated to the error.
func (a APIError) HTTPStatusCode() int {
	return a.httpStatusCode
}

// MarshalJSON marshals the error detail into an API response body.
func (a APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Detail string `json:"detail"`
	}{Detail: a.Error()})
}

// ValidationError represents an error caused by an invalid request field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Reason
}
