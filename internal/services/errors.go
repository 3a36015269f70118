package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolUnavailable = errors.New("tool unavailable")
	ErrToolExecution   = errors.New("tool execution failed")
	ErrParse           = errors.New("parse failure")
	ErrFilesystem      = errors.New("filesystem failure")
	ErrInvalidState    = errors.New("invalid state")
	ErrConfiguration   = errors.New("configuration error")
	ErrValidation      = errors.New("validation error")
	ErrTimeout         = errors.New("timeout")
)

var markers = []error{
	ErrToolUnavailable,
	ErrToolExecution,
	ErrParse,
	ErrFilesystem,
	ErrInvalidState,
	ErrConfiguration,
	ErrValidation,
	ErrTimeout,
}

// Wrap builds an error message that includes scope context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, scope, operation, message string, err error) error {
	detail := buildDetail(scope, operation, message)
	if marker == nil {
		marker = ErrToolExecution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails is the user-facing breakdown of a wrapped error.
type ErrorDetails struct {
	Kind    string
	Message string
}

// Details classifies err by its marker. Kind is empty for unmarked errors.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Message: strings.TrimSpace(err.Error())}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			details.Kind = marker.Error()
			details.Message = strings.TrimSpace(strings.TrimPrefix(details.Message, marker.Error()+":"))
			break
		}
	}
	return details
}

// MarkerOf returns the first sentinel marker err carries, or nil.
func MarkerOf(err error) error {
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(scope, operation, message string) string {
	parts := make([]string, 0, 3)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
