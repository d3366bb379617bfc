package core

// Error codes reference.
//
// Every user-visible failure carries a code that support staff can look up.
// Codes are grouped by family:
//
//	DB001-DB007     storage errors (constraints, connections, timeouts)
//	VAL001-VAL009   validation errors (formats, headers, fields, requests)
//	FILE001-FILE006 file errors (size, type, encoding, empty uploads, forms)
//	IMP001-IMP005   import errors (concurrency, locks, runs, entities)
//	AUTH001-AUTH003 authentication and authorization
//	RATE001         request throttling
//	ERR000          fallback when nothing matches
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Storage
	{"duplicate key", UserMessage{"A record with this ID already exists", "Remove duplicate identifiers from the file", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your CSV", "DB002"}},
	{"violates unique", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your CSV", "DB002"}},
	{"foreign key", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"store unavailable", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Validation
	{"invalid date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD or DD/MM/YYYY", "VAL001"}},
	{"invalid number", UserMessage{"Invalid number format detected", "Use plain digits with an optional decimal point", "VAL002"}},
	{"missing required field", UserMessage{"Required field is empty", "Fill in every required column", "VAL003"}},
	{"missing required headers", UserMessage{"Required column is missing from CSV", "Download the template and compare headers", "VAL004"}},
	{"unknown headers", UserMessage{"File has columns this entity does not accept", "Remove the extra columns or use the template", "VAL005"}},
	{"allowed:", UserMessage{"Value is not in the allowed list", "Check the allowed values for this field", "VAL006"}},
	{"invalid email", UserMessage{"Invalid email address", "Use the form name@example.com", "VAL007"}},
	{"invalid gst", UserMessage{"Invalid GST number", "GST numbers have 15 letters and digits", "VAL008"}},
	{"invalid request", UserMessage{"Request parameters are invalid", "Check the entity, operation and format values", "VAL009"}},

	// File
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"only csv files", UserMessage{"Only CSV files are allowed", "Save the sheet as .csv and upload again", "FILE002"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure file is comma-separated with one record per line", "FILE002"}},
	{"encoding", UserMessage{"File contains invalid characters", "Save file as UTF-8", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to upload", "FILE004"}},
	{"header and at least one data row", UserMessage{"The uploaded file has no data rows", "Add at least one row below the header", "FILE005"}},
	{"invalid upload form", UserMessage{"Upload could not be read", "Send the file as multipart/form-data in a field named file", "FILE006"}},

	// Import
	{"too many uploads", UserMessage{"Too many uploads in progress", "Please wait a moment and try again", "IMP001"}},
	{"already running", UserMessage{"Another import of this entity is running", "Wait for it to finish and try again", "IMP002"}},
	{"import not found", UserMessage{"Import not found", "Refresh the import history", "IMP003"}},
	{"already rolled back", UserMessage{"Import was already rolled back", "No action needed", "IMP004"}},
	{"unknown entity", UserMessage{"Unknown record type", "Use one of: ledger, user, product, inventory", "IMP005"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try uploading a smaller file", "IMP001"}},

	// Auth
	{"missing token", UserMessage{"Authentication required", "Sign in and try again", "AUTH001"}},
	{"invalid token", UserMessage{"Session is invalid or expired", "Sign in again", "AUTH002"}},
	{"forbidden", UserMessage{"You do not have permission for this action", "Ask an administrator for access", "AUTH003"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
	{"timeout", UserMessage{"Operation timed out", "Try uploading a smaller file or try again later", "DB006"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Structural errors keep their own message and code.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var se *StructuralError
	if errors.As(err, &se) {
		msg := UserMessage{Message: se.Message, Code: se.Code}
		if m := lookup(se.Message); m != nil {
			msg.Action = m.Action
		}
		return msg
	}

	if m := lookup(err.Error()); m != nil {
		return *m
	}
	return defaultMessage
}

func lookup(text string) *UserMessage {
	text = strings.ToLower(text)
	for i := range errorPatterns {
		if strings.Contains(text, errorPatterns[i].pattern) {
			return &errorPatterns[i].msg
		}
	}
	return nil
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
