package fatsecret

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by API operations that need a user token
// when none is configured.
var ErrNotAuthenticated = errors.New("this operation requires user authentication: connect your FatSecret account first")

// ErrReadOnlyTokenStore is returned by write operations on a store that
// sources tokens from the environment.
var ErrReadOnlyTokenStore = errors.New("token store is read-only: set FATSECRET_USER_TOKEN and FATSECRET_USER_TOKEN_SECRET instead")

// FlowError reports a failure during the OAuth 1.0a handshake. Exactly one of
// Status, Err, or Reason carries the detail: Status for a non-2xx provider
// answer, Err for a transport failure, Reason for a protocol-level problem.
type FlowError struct {
	Op     string // "request token" or "access token"
	Status int
	Reason string
	Err    error
}

func (e *FlowError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("failed to get %s: HTTP %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("failed to get %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("failed to get %s: %s", e.Op, e.Reason)
	}
}

func (e *FlowError) Unwrap() error { return e.Err }

// APIErrorKind classifies FatSecret API errors into a closed set, decoded
// once from the provider's numeric code table at the client boundary.
type APIErrorKind int

const (
	APIErrorGeneric APIErrorKind = iota
	APIErrorRateLimited
	APIErrorFoodNotFound
	APIErrorRecipeNotFound
	APIErrorBarcodeNotFound
)

// FatSecret numeric error codes.
const (
	codeRateLimited     = 9
	codeFoodNotFound    = 106
	codeRecipeNotFound  = 107
	codeBarcodeNotFound = 110
)

// APIError is an error reported by the FatSecret API, either in the JSON
// error envelope or as an HTTP-level failure.
type APIError struct {
	Kind    APIErrorKind
	Code    int // provider error code; 0 for HTTP/transport failures
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return e.Message
}

// decodeAPIError maps a provider error code to its APIError variant.
func decodeAPIError(code int, message string) *APIError {
	kind := APIErrorGeneric
	switch code {
	case codeRateLimited:
		kind = APIErrorRateLimited
	case codeFoodNotFound:
		kind = APIErrorFoodNotFound
	case codeRecipeNotFound:
		kind = APIErrorRecipeNotFound
	case codeBarcodeNotFound:
		kind = APIErrorBarcodeNotFound
	}
	return &APIError{Kind: kind, Code: code, Message: message}
}

// errorKind extracts the APIErrorKind from an error chain. The second return
// is false when the chain holds no APIError.
func errorKind(err error) (APIErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return APIErrorGeneric, false
}

// IsRateLimited reports whether err is a rate-limit API error.
func IsRateLimited(err error) bool {
	kind, ok := errorKind(err)
	return ok && kind == APIErrorRateLimited
}
