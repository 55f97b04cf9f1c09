package ballots

import (
	"errors"
	"fmt"
)

// ErrNoData means every provider was skipped, failed or came back empty.
// Callers treat it as "not available yet", not as a fault.
var ErrNoData = errors.New("no ballot data available")

// ErrUnavailable marks a provider that cannot be attempted, usually for
// lack of a credential or an address.
var ErrUnavailable = errors.New("provider unavailable")

// ValidationError rejects a request before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError is a store failure during a merge, tagged with the
// jurisdiction being refreshed.
type PersistenceError struct {
	Jurisdiction string
	Op           string
	Err          error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save ballot data for %s (%s): %v", e.Jurisdiction, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func unavailable(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, reason)
}

// NoDataError carries the fetch report of an exhausted fetch. It matches
// ErrNoData under errors.Is and its message is the report's hint.
type NoDataError struct {
	Report *FetchReport
}

func (e *NoDataError) Error() string {
	if hint := e.Report.Hint(); hint != "" {
		return hint
	}
	return ErrNoData.Error()
}

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }
