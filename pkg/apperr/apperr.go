// Package apperr defines the structured errors returned across the service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code identifies a class of failure
type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeValidationFail     Code = "VALIDATION_FAILED"
	CodeUnknownStrategy    Code = "UNKNOWN_STRATEGY"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeUnbalancedSchedule Code = "UNBALANCED_SCHEDULE"
	CodeDatabase           Code = "DATABASE_ERROR"
)

// AppError carries a code, a human readable message and an optional cause
type AppError struct {
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
	Details    string         `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Cause      error          `json:"-"`
	Fields     map[string]any `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithField attaches a structured field
func (e *AppError) WithField(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// New creates an error for code
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap creates an error for code around cause
func Wrap(err error, code Code, message string) *AppError {
	e := New(code, message)
	e.Cause = err
	return e
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeUnknownStrategy:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnbalancedSchedule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError with code
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode returns the code of err or CodeUnknown
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// HTTPStatus maps err to a status code
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the human readable part of err
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, id))
}

// UnknownStrategy lists the registered names in the message
func UnknownStrategy(name string, available []string) *AppError {
	e := New(CodeUnknownStrategy, fmt.Sprintf("unknown strategy: %s. Available strategies: [%s]", name, strings.Join(available, ", ")))
	return e.WithField("available", available)
}

func Unbalanced(reason string) *AppError {
	return New(CodeUnbalancedSchedule, reason)
}

func Database(err error, message string) *AppError {
	return Wrap(err, CodeDatabase, message)
}

// ValidationErrors collects field level problems
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError is a single field problem
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts the collection into a VALIDATION_FAILED error
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, ve.Error())
	for _, e := range ve.Errors {
		err.WithField(e.Field, e.Message)
	}
	return err
}
