package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeMalformedIndex ErrorType = "malformed_index"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeRender         ErrorType = "render"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
)

// FolioError is a structured error type with context.
type FolioError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	Category string
	Path     string
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Category != "" {
		parts = append(parts, "category:"+e.Category)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *FolioError) Is(target error) bool {
	var t *FolioError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FolioError) WithContext(key string, value interface{}) *FolioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithCategory records the content category the error belongs to.
func (e *FolioError) WithCategory(category string) *FolioError {
	e.Category = category

	return e
}

// WithPath records the file the error refers to.
func (e *FolioError) WithPath(path string) *FolioError {
	e.Path = path

	return e
}

// Error creation functions

// NewNotFoundError creates an error for content that is absent from its index.
func NewNotFoundError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewMalformedIndexError creates an error for an index that cannot be parsed
// or that violates its schema.
func NewMalformedIndexError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:    ErrorTypeMalformedIndex,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates a template rendering error.
func NewRenderError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:    ErrorTypeRender,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// TypeOf returns the ErrorType of the first FolioError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Type
	}

	return ErrorTypeInternal
}

// IsNotFound checks if an error reports missing content.
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsMalformedIndex checks if an error reports a bad index document.
func IsMalformedIndex(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeMalformedIndex
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeIO
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if TypeOf(err) == ErrorTypeNotFound {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle logs an error at a level matching its type.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var fe *FolioError
	if !errors.As(err, &fe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch fe.Type {
	case ErrorTypeNotFound:
		h.logger.Warn(ctx, err, "Content not found",
			"type", fe.Type,
			"code", fe.Code,
			"category", fe.Category)
	case ErrorTypeRender:
		h.logger.Error(ctx, err, "Template rendering failed",
			"type", fe.Type,
			"code", fe.Code,
			"category", fe.Category)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", fe.Type,
			"code", fe.Code,
			"category", fe.Category,
			"path", fe.Path)
	}
}

// Common error codes.
const (
	ErrCodeEntryNotFound   = "ERR_ENTRY_NOT_FOUND"
	ErrCodeIndexRead       = "ERR_INDEX_READ"
	ErrCodeIndexSyntax     = "ERR_INDEX_SYNTAX"
	ErrCodeIndexSchema     = "ERR_INDEX_SCHEMA"
	ErrCodeDuplicateID     = "ERR_DUPLICATE_ID"
	ErrCodeBodyRead        = "ERR_BODY_READ"
	ErrCodeFrontMatter     = "ERR_FRONT_MATTER"
	ErrCodeMarkdown        = "ERR_MARKDOWN"
	ErrCodeTemplate        = "ERR_TEMPLATE"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeUnknownCategory = "ERR_UNKNOWN_CATEGORY"
	ErrCodeInternalError   = "ERR_INTERNAL"
)
