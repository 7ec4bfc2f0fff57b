package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/dutyledger/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodePersonNotFound   = "PERSON_NOT_FOUND"
	CodePersonExists     = "PERSON_EXISTS"
	CodeDuplicateDuty    = "DUPLICATE_DUTY"
	CodePersonRetired    = "PERSON_RETIRED"
	CodeDutyOutOfOrder   = "DUTY_OUT_OF_ORDER"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Specific errors are
// matched before the kind they wrap.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, ve.Error()}}
	case errors.Is(err, model.ErrDutyOutOfOrder):
		return &httpError{http.StatusBadRequest, APIError{CodeDutyOutOfOrder, err.Error()}}
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, err.Error()}}

	case errors.Is(err, model.ErrPersonNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePersonNotFound, "Person not found"}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}

	case errors.Is(err, model.ErrPersonExists):
		return &httpError{http.StatusConflict, APIError{CodePersonExists, "A person with this name already exists"}}
	case errors.Is(err, model.ErrDuplicateDuty):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateDuty, err.Error()}}
	case errors.Is(err, model.ErrPersonRetired):
		return &httpError{http.StatusConflict, APIError{CodePersonRetired, err.Error()}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
