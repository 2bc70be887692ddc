package anvil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a logical API failure after a successful transport
// round trip. Kinds come from a fixed translation table; unrecognized
// provider codes map to KindUnknown with the raw message preserved.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindValidationFailed ErrorKind = "validation_failed"
	KindRateLimited      ErrorKind = "rate_limited"
	KindUnknown          ErrorKind = "unknown"
)

// ErrNoProgress reports a paginated query whose server echoed the previous
// cursor while still claiming more pages. Continuing would loop forever.
var ErrNoProgress = errors.New("pagination cursor did not advance")

// ValidationError reports invalid or missing input detected before any
// network call is attempted.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation error: %s (fields: %s)", e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TransportError wraps a network or connection failure. It is surfaced
// unchanged and is not logically inspectable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a logical failure reported by the Anvil API, translated
// through the fixed code table.
type APIError struct {
	Kind       ErrorKind
	Code       string
	Message    string
	StatusCode int
	Fields     []string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsValidationError returns true if the error is client-side invalid input,
// detected before any request was sent.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransportError returns true if the error is a network-level failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsNotFound returns true if the API reported a missing resource.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsPermissionDenied returns true if the API rejected the credential or the
// operation on the target resource.
func IsPermissionDenied(err error) bool {
	return hasKind(err, KindPermissionDenied)
}

// IsValidationFailed returns true if the remote service rejected the
// request payload.
func IsValidationFailed(err error) bool {
	return hasKind(err, KindValidationFailed)
}

// IsRateLimited returns true if the API reported the key over its request
// ceiling.
func IsRateLimited(err error) bool {
	return hasKind(err, KindRateLimited)
}

func hasKind(err error, kind ErrorKind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == kind
}
