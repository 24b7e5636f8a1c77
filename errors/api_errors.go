package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/jonafarm/market/jsonx"
)

// APIErrorCode represents standardized error codes for API responses
type APIErrorCode string

const (
	// General errors
	ErrCodeInternal APIErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest APIErrorCode = "invalid_request"
	ErrCodeBodyTooLarge   APIErrorCode = "body_too_large"

	// Access errors
	ErrCodeUnauthorized APIErrorCode = "unauthorized"
	ErrCodeForbidden    APIErrorCode = "forbidden"
	ErrCodeRateLimited  APIErrorCode = "rate_limited"

	// Business logic errors
	ErrCodeNotFound  APIErrorCode = "not_found"
	ErrCodeDuplicate APIErrorCode = "duplicate"

	// Ledger errors
	ErrCodeChain APIErrorCode = "chain_error"
)

// Error message constants, worded as the web client expects them
const (
	ErrMsgAllFieldsRequired       = "All fields required"
	ErrMsgMissingRequiredFields   = "Missing required fields"
	ErrMsgCredentialsRequired     = "Username and password required"
	ErrMsgEmailPasswordRequired   = "Email and password required"
	ErrMsgInvalidCredentials      = "Invalid username or password"
	ErrMsgInvalidAdminCredentials = "Invalid admin credentials"
	ErrMsgInvalidEmailOrPassword  = "Invalid email or password"
	ErrMsgEmailRegistered         = "Email already registered"
	ErrMsgProductNotFound         = "Product not found"
	ErrMsgOrderNotFound           = "Order not found"
	ErrMsgInvalidRequest          = "Request format is invalid"
	ErrMsgRequestBodyTooLarge     = "Request body exceeds maximum allowed size"
	ErrMsgNotLoggedIn             = "Login required"
	ErrMsgForbidden               = "Your role cannot perform this action"
	ErrMsgRateLimited             = "Too many requests, please slow down"
	ErrMsgServer                  = "Server error"
)

// APIError is the error body returned by every endpoint:
// {"message": ..., "error": ...}.
type APIError struct {
	Code    APIErrorCode `json:"code"`
	Message string       `json:"message"`
	Detail  string       `json:"error,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	b, _ := jsonx.Marshal(e)
	return string(b)
}

// NewError creates a new APIError and returns it as error interface
func NewError(code APIErrorCode, message string) error {
	return &APIError{Code: code, Message: message}
}

// Wrap creates an APIError carrying the text of cause.
func Wrap(code APIErrorCode, message string, cause error) error {
	e := &APIError{Code: code, Message: message}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// StatusCode maps an error code to its HTTP status.
func StatusCode(code APIErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeDuplicate:
		return http.StatusBadRequest
	case ErrCodeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
