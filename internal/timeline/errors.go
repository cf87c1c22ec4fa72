package timeline

import (
	"errors"
	"fmt"
)

// Error represents a rejected command or invalid construction.
//
// The core is designed to avoid fallible states rather than recover from
// them: the only errors it produces are rejections at the API boundary
// (invalid span ranges, duplicate identifiers, malformed tick deltas).
// A failed computation inside the tick loop is a logic bug, not an error
// value.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Runner identifies the affected runner, if any.
	Runner RunnerID

	// Span identifies the affected span, if any.
	Span SpanID
}

// ErrorCode categorizes core errors.
type ErrorCode string

const (
	// ErrCodeInvalidRange indicates a span with start > end.
	ErrCodeInvalidRange ErrorCode = "INVALID_RANGE"

	// ErrCodeDuplicateSpan indicates a span id already scheduled on the runner.
	ErrCodeDuplicateSpan ErrorCode = "DUPLICATE_SPAN"

	// ErrCodeDuplicateRunner indicates a runner id already registered.
	ErrCodeDuplicateRunner ErrorCode = "DUPLICATE_RUNNER"

	// ErrCodeInvalidDelta indicates a negative or NaN tick delta.
	ErrCodeInvalidDelta ErrorCode = "INVALID_DELTA"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Runner != "" && e.Span != "":
		return fmt.Sprintf("%s: %s (runner=%s, span=%s)", e.Code, e.Message, e.Runner, e.Span)
	case e.Runner != "":
		return fmt.Sprintf("%s: %s (runner=%s)", e.Code, e.Message, e.Runner)
	case e.Span != "":
		return fmt.Sprintf("%s: %s (span=%s)", e.Code, e.Message, e.Span)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidRange returns true if the error is a span range rejection.
// Uses errors.As to handle wrapped errors.
func IsInvalidRange(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeInvalidRange
	}
	return false
}

// IsDuplicate returns true if the error is a duplicate span or runner id.
// Uses errors.As to handle wrapped errors.
func IsDuplicate(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeDuplicateSpan || te.Code == ErrCodeDuplicateRunner
	}
	return false
}

func newRangeError(id SpanID, start, end Time) *Error {
	return &Error{
		Code:    ErrCodeInvalidRange,
		Message: fmt.Sprintf("span start %v is after end %v", start, end),
		Span:    id,
	}
}

func newDuplicateSpanError(runner RunnerID, span SpanID) *Error {
	return &Error{
		Code:    ErrCodeDuplicateSpan,
		Message: "span id already scheduled on runner",
		Runner:  runner,
		Span:    span,
	}
}

func newDuplicateRunnerError(runner RunnerID) *Error {
	return &Error{
		Code:    ErrCodeDuplicateRunner,
		Message: "runner id already registered",
		Runner:  runner,
	}
}

func newInvalidDeltaError(message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidDelta,
		Message: message,
	}
}
