package core

import (
	"errors"
	"fmt"
)

// ValidationError is a form field that failed a check before any I/O happened.
// Message is the text shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// FetchError covers both transport failures and non-2xx responses.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means no readable content could be found in the page.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting article from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ConversionError is a failure turning article HTML into Markdown.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting article: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// PersistError means the note store rejected the write.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("saving note: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ErrNoContent is wrapped by ExtractionError when the page has no readable text.
var ErrNoContent = errors.New("no readable content")

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsFetch checks if an error is a FetchError.
func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsExtraction checks if an error is an ExtractionError.
func IsExtraction(err error) bool {
	var target *ExtractionError
	return errors.As(err, &target)
}

// IsConversion checks if an error is a ConversionError.
func IsConversion(err error) bool {
	var target *ConversionError
	return errors.As(err, &target)
}

// IsPersist checks if an error is a PersistError.
func IsPersist(err error) bool {
	var target *PersistError
	return errors.As(err, &target)
}

// Kind names the error class for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsFetch(err):
		return "fetch"
	case IsExtraction(err):
		return "extraction"
	case IsConversion(err):
		return "conversion"
	case IsPersist(err):
		return "persist"
	default:
		return "unknown"
	}
}
