package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by operations the tracking service refuses
	// to perform, such as per-instance profile retrieval.
	ErrUnsupported = errors.New("operation not supported")

	// ErrDefinitionUnavailable is the sentinel wrapped by DefinitionUnavailableError.
	ErrDefinitionUnavailable = errors.New("definition unavailable")

	// ErrNotTrackingLog is returned when a file has no tracking log header.
	ErrNotTrackingLog = errors.New("not a tracking log")

	// ErrUnknownRecordKind is returned for lines that carry no known record tag.
	ErrUnknownRecordKind = errors.New("unknown record kind")

	// ErrHeaderOverflow is returned when a log header does not fit the fixed
	// header width.
	ErrHeaderOverflow = errors.New("header exceeds fixed width")

	// ErrChannelState is returned when a channel operation is invoked in the
	// wrong lifecycle state.
	ErrChannelState = errors.New("invalid channel state")
)

// DefinitionUnavailableError reports that the definition document of an
// instance could not be located or read.
type DefinitionUnavailableError struct {
	InstanceID string
	Err        error
}

func (e *DefinitionUnavailableError) Error() string {
	return fmt.Sprintf("definition unavailable for instance %s: %v", e.InstanceID, e.Err)
}

func (e *DefinitionUnavailableError) Unwrap() []error {
	return []error{ErrDefinitionUnavailable, e.Err}
}

// OrderError reports a decreasing order number in an instance history.
type OrderError struct {
	Index    int
	Previous int
	Current  int
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("record %d: order %d follows %d", e.Index, e.Current, e.Previous)
}
