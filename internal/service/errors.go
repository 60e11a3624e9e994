package service

import "errors"

var (
	// ErrNotFound is returned for votes on items that are not in the listing.
	ErrNotFound = errors.New("item not found")
	// ErrReportNotFound is returned for votes on unknown community reports.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidDirection is returned when a vote direction is not up or down.
	ErrInvalidDirection = errors.New("invalid vote direction")
	// ErrInvalidSort is returned for sort keys the view does not support.
	ErrInvalidSort = errors.New("invalid sort key")
)

// ValidationError is a submission rejected for a missing required field.
// It is safe to show to the user.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingName = &ValidationError{Code: "MISSING_NAME", Message: "missing name"}
	ErrMissingType = &ValidationError{Code: "MISSING_TYPE", Message: "missing type"}
)
