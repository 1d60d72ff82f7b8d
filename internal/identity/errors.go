package identity

import (
	"context"
	"errors"
)

// Code is a provider error code.
type Code string

const (
	CodeEmailAlreadyInUse    Code = "auth/email-already-in-use"
	CodeInvalidEmail         Code = "auth/invalid-email"
	CodeOperationNotAllowed  Code = "auth/operation-not-allowed"
	CodeWeakPassword         Code = "auth/weak-password"
	CodeUserDisabled         Code = "auth/user-disabled"
	CodeUserNotFound         Code = "auth/user-not-found"
	CodeWrongPassword        Code = "auth/wrong-password"
	CodeInvalidCredential    Code = "auth/invalid-credential"
	CodeNetworkRequestFailed Code = "auth/network-request-failed"
	CodeUnknown              Code = "auth/unknown"
)

// Message returns the user-facing text for a code.
func Message(code Code) string {
	switch code {
	case CodeEmailAlreadyInUse:
		return "This email is already registered"
	case CodeInvalidEmail:
		return "Invalid email address"
	case CodeOperationNotAllowed:
		return "Operation not allowed"
	case CodeWeakPassword:
		return "Password should be at least 6 characters"
	case CodeUserDisabled:
		return "This account has been disabled"
	case CodeUserNotFound:
		return "No account found with this email"
	case CodeWrongPassword:
		return "Incorrect password"
	case CodeInvalidCredential:
		return "Invalid email or password"
	case CodeNetworkRequestFailed:
		return "Network error. Please check your connection"
	default:
		return "An error occurred. Please try again"
	}
}

// Error is a provider failure. Error() is safe to show to users; the
// cause is kept for logs.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string { return Message(e.Code) }

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, cause error) *Error {
	return &Error{Code: code, Err: cause}
}

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return CodeUnknown
}

// storeError classifies an unexpected store failure.
func storeError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(CodeNetworkRequestFailed, err)
	}
	return newError(CodeUnknown, err)
}
