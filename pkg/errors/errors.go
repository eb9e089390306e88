// Package errors provides structured error types for craftgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the graph core, the editor, the CLI and the API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Graph edits fail with one of a closed set of codes:
//   - NODE_NOT_FOUND, UNSUPPORTED_NODE: the edit named a missing node or the wrong kind
//   - NO_RECIPES, MULTIPLE_RECIPES, NO_MACHINES: an item cannot be expanded unambiguously
//   - INCOMPATIBLE_NODE_ITEMS, INCOMPATIBLE_NODE_TYPES, MERGE_CYCLE: merge preconditions
//   - NO_EDGE: an edge to be severed does not exist
//   - INCONSISTENT_GRAPH: the graph indices drifted apart (fatal)
//
// Only INCONSISTENT_GRAPH is fatal: the graph may have been left half-mutated
// and must be restored from a snapshot. Every other code guarantees the graph
// was not modified.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Handle missing node
//	}
//
//	// Add context while keeping the original code
//	err = errors.Context(err, "expand node %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidName   Code = "INVALID_NAME"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeRecipeNotFound Code = "RECIPE_NOT_FOUND"

	// Graph edit errors
	ErrCodeNodeNotFound          Code = "NODE_NOT_FOUND"
	ErrCodeUnsupportedNode       Code = "UNSUPPORTED_NODE"
	ErrCodeNoRecipes             Code = "NO_RECIPES"
	ErrCodeMultipleRecipes       Code = "MULTIPLE_RECIPES"
	ErrCodeNoMachines            Code = "NO_MACHINES"
	ErrCodeIncompatibleNodeItems Code = "INCOMPATIBLE_NODE_ITEMS"
	ErrCodeIncompatibleNodeTypes Code = "INCOMPATIBLE_NODE_TYPES"
	ErrCodeMergeCycle            Code = "MERGE_CYCLE"
	ErrCodeNoEdge                Code = "NO_EDGE"

	// Internal errors
	ErrCodeInconsistentGraph Code = "INCONSISTENT_GRAPH"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
	ErrCodeUnsupported       Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Context wraps cause with an additional message, keeping the code of the
// outermost coded error in cause. Plain errors are wrapped as ErrCodeInternal.
// Returns nil if cause is nil.
func Context(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	code := GetCode(cause)
	if code == "" {
		code = ErrCodeInternal
	}
	return Wrap(code, cause, format, args...)
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	for _, e := range Chain(err) {
		if ce, ok := e.(*Error); ok && ce.Code == code {
			return true
		}
	}
	return false
}

// IsFatal reports whether err signals an internal inconsistency of the graph.
// Callers must discard the graph the failing operation ran on.
func IsFatal(err error) bool {
	return Is(err, ErrCodeInconsistentGraph)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RootCode returns the code of the innermost *Error in err's chain, which is
// the code of the failure that started the chain. Returns empty string if the
// chain carries no *Error.
func RootCode(err error) Code {
	var code Code
	for _, e := range Chain(err) {
		if ce, ok := e.(*Error); ok {
			code = ce.Code
		}
	}
	return code
}

// Chain returns err followed by every error it wraps, outermost first.
// Errors joined with errors.Join are walked depth-first.
func Chain(err error) []error {
	var chain []error
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			chain = append(chain, e)
			switch u := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range u.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = u.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
	return chain
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
