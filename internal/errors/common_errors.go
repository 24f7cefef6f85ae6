package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeData             ErrorType = "DATA"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDataError reports input that cannot feed the analysis at all:
// missing columns, unreadable files, a column with no numeric values.
func NewDataError(message string, cause error) *AppError {
	return NewAppError(ErrTypeData, message, cause)
}

// NewInsufficientDataError reports a regression that cannot be estimated,
// either because of too few rows or a rank-deficient design.
func NewInsufficientDataError(message string) *AppError {
	return NewAppError(ErrTypeInsufficientData, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsDataError reports whether err carries a DATA AppError.
func IsDataError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeData
}

// IsInsufficientDataError reports whether err carries an INSUFFICIENT_DATA AppError.
func IsInsufficientDataError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeInsufficientData
}
