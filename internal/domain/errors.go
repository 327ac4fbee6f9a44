package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the search layer.
type ErrorKind string

const (
	KindInvalidLocation ErrorKind = "INVALID_LOCATION"
	KindInvalidDates    ErrorKind = "INVALID_DATES"
	KindMissingAPIKey   ErrorKind = "MISSING_API_KEY"
	KindInvalidAPIKey   ErrorKind = "INVALID_API_KEY"
	KindRateLimited     ErrorKind = "RATE_LIMITED"
	KindBadRequest      ErrorKind = "BAD_REQUEST"
	KindServerError     ErrorKind = "SERVER_ERROR"
	KindNetworkError    ErrorKind = "NETWORK_ERROR"
	KindUnexpected      ErrorKind = "UNEXPECTED_ERROR"
	// KindEmptyResults is a soft failure: HTTP 200 with no hotels.
	KindEmptyResults ErrorKind = "EMPTY_RESULTS"
)

var defaultMessages = map[ErrorKind]string{
	KindInvalidLocation: "Invalid location parameter.",
	KindInvalidDates:    "Invalid date parameters.",
	KindMissingAPIKey:   "API key is missing. Please check your environment configuration.",
	KindInvalidAPIKey:   "Invalid API key. Please check your configuration.",
	KindRateLimited:     "Rate limit exceeded. Please try again later.",
	KindBadRequest:      "Invalid request parameters",
	KindServerError:     "Server error. Please try again later.",
	KindNetworkError:    "Network error. Please check your connection.",
	KindUnexpected:      "An unexpected error occurred",
	KindEmptyResults:    "No hotels found for your search criteria. Please try a different location or dates.",
}

// Error carries a kind, a user-facing message and, for provider failures,
// the HTTP status and underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func NewError(kind ErrorKind, message string, err error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidDates)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidLocation = NewError(KindInvalidLocation, "", nil)
	ErrInvalidDates    = NewError(KindInvalidDates, "", nil)
	ErrMissingAPIKey   = NewError(KindMissingAPIKey, "", nil)
	ErrInvalidAPIKey   = NewError(KindInvalidAPIKey, "", nil)
	ErrRateLimited     = NewError(KindRateLimited, "", nil)
	ErrBadRequest      = NewError(KindBadRequest, "", nil)
	ErrServerError     = NewError(KindServerError, "", nil)
	ErrNetwork         = NewError(KindNetworkError, "", nil)
	ErrUnexpected      = NewError(KindUnexpected, "", nil)
	ErrEmptyResults    = NewError(KindEmptyResults, "", nil)
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected for foreign errors and "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidLocation, KindInvalidDates, KindMissingAPIKey:
		return true
	}
	return false
}

// UserMessage returns the message safe to show to an end user.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return defaultMessages[KindUnexpected]
}

// KindForStatus maps a provider HTTP status to an error kind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case 400:
		return KindBadRequest
	case 401:
		return KindInvalidAPIKey
	case 429:
		return KindRateLimited
	case 500:
		return KindServerError
	}
	return KindUnexpected
}
