package shared

import (
	"github.com/samber/oops"
)

// Error codes shared across the service and store layers.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeStoreError    = "STORE_ERROR"
)

// ErrInvalidInput creates a validation error for bad caller input
func ErrInvalidInput(msg string) error {
	return oops.
		Code(CodeInvalidInput).
		In("domain").
		Errorf("%s", msg)
}

// ErrInvalidInputf creates a validation error with a formatted message
func ErrInvalidInputf(format string, args ...interface{}) error {
	return oops.
		Code(CodeInvalidInput).
		In("domain").
		Errorf(format, args...)
}

// ErrNotFound creates a not-found error for a missing resource
func ErrNotFound(resource string) error {
	return oops.
		Code(CodeNotFound).
		In("domain").
		Errorf("%s not found", resource)
}

// ErrNotFoundf creates a not-found error with a formatted message
func ErrNotFoundf(format string, args ...interface{}) error {
	return oops.
		Code(CodeNotFound).
		In("domain").
		Errorf(format, args...)
}

// ErrAlreadyExists creates a validation error for a duplicate resource
func ErrAlreadyExists(resource string) error {
	return oops.
		Code(CodeAlreadyExists).
		In("domain").
		Errorf("%s already exists", resource)
}

// WrapStoreError wraps an unexpected store failure with the collection
// and operation that produced it. The original cause stays unwrapped
// inside the chain.
func WrapStoreError(err error, collection, op string) error {
	return oops.
		Code(CodeStoreError).
		In("store").
		With("collection", collection).
		With("operation", op).
		Wrapf(err, "%s failed on collection %s", op, collection)
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code() == code
	}
	return false
}

// IsValidation reports whether err is a caller-input error. Duplicate
// resources count as validation failures at the service boundary.
func IsValidation(err error) bool {
	return HasCode(err, CodeInvalidInput) || HasCode(err, CodeAlreadyExists)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsStoreError reports whether err is a wrapped store failure
func IsStoreError(err error) bool {
	return HasCode(err, CodeStoreError)
}
