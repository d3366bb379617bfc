package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden is returned when the caller's role may not touch an entity.
	ErrForbidden = errors.New("forbidden: role may not access this entity")

	// ErrUnknownEntity wraps lookups of an entity kind that has no schema.
	ErrUnknownEntity = errors.New("unknown entity")
)

// StructuralError fails a whole upload before any row is processed.
type StructuralError struct {
	Code    string
	Message string
}

func (e *StructuralError) Error() string {
	return e.Message
}

func structural(code, format string, args ...any) *StructuralError {
	return &StructuralError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// Structural failures surfaced verbatim to callers.
var (
	ErrNotCSV       = &StructuralError{Code: "FILE002", Message: "Only CSV files are allowed"}
	ErrNoDataRows   = &StructuralError{Code: "FILE005", Message: "file must contain a header and at least one data row"}
	ErrFileTooLarge = &StructuralError{Code: "FILE001", Message: "file too large"}
)

func errMissingHeaders(missing, found []string) *StructuralError {
	return structural("VAL004", "missing required headers: {%s}, found headers: {%s}", joinSet(missing), joinSet(found))
}

func errUnknownHeaders(unknown []string) *StructuralError {
	return structural("VAL005", "unknown headers: {%s}", joinSet(unknown))
}

func joinSet(items []string) string {
	return strings.Join(items, ", ")
}
