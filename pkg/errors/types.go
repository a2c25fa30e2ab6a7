package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Input errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Resolution errors
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"

	// Retrieval errors
	ErrCodeTransfer ErrorCode = "TRANSFER_FAILED"

	// Packaging errors
	ErrCodeExternalTool ErrorCode = "EXTERNAL_TOOL"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Class groups error codes into the categories an operator cares about.
type Class string

const (
	ClassResolution   Class = "resolution"
	ClassTransfer     Class = "transfer"
	ClassExternalTool Class = "external_tool"
	ClassAsset        Class = "asset"
	ClassUsage        Class = "usage"
	ClassInternal     Class = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// NotFound creates a not found error for a show lookup
func NotFound(resource string, query string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found for %q", resource, query)).
		WithDetail("resource", resource).
		WithDetail("query", query)
}

// MalformedPayload creates an error for an API payload missing required fields
func MalformedPayload(endpoint string, reason string) *AppError {
	return New(ErrCodeMalformedPayload, fmt.Sprintf("malformed response from %s: %s", endpoint, reason)).
		WithDetail("endpoint", endpoint).
		WithDetail("reason", reason)
}

// TransferError creates a stream transfer error
func TransferError(url string, cause error) *AppError {
	return Wrap(cause, ErrCodeTransfer, fmt.Sprintf("fetching %s failed", url)).
		WithDetail("url", url)
}

// ExternalToolError creates an error for a failed external tool invocation
func ExternalToolError(tool string, cause error) *AppError {
	return Wrap(cause, ErrCodeExternalTool, fmt.Sprintf("%s failed", tool)).
		WithDetail("tool", tool)
}

// ConfigError creates a configuration error
func ConfigError(key string, reason string) *AppError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("configuration error for '%s': %s", key, reason)).
		WithDetail("key", key).
		WithDetail("reason", reason)
}

// InvalidInput creates an error for unusable caller input
func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// Is checks if an error, or any error it wraps, carries the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// ClassOf maps an error to its operator-facing class
func ClassOf(err error) Class {
	if IsAssetWarning(err) {
		return ClassAsset
	}
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeMalformedPayload:
		return ClassResolution
	case ErrCodeTransfer:
		return ClassTransfer
	case ErrCodeExternalTool:
		return ClassExternalTool
	case ErrCodeConfigInvalid, ErrCodeInvalidInput:
		return ClassUsage
	default:
		return ClassInternal
	}
}

// AssetWarning reports a non-fatal problem with an optional asset such as
// cover art. It is logged, never returned as a run failure.
type AssetWarning struct {
	Asset  string
	URL    string
	Reason string
}

func (w *AssetWarning) Error() string {
	if w.URL == "" {
		return fmt.Sprintf("%s unavailable: %s", w.Asset, w.Reason)
	}
	return fmt.Sprintf("%s unavailable at %s: %s", w.Asset, w.URL, w.Reason)
}

// IsAssetWarning reports whether err is an AssetWarning
func IsAssetWarning(err error) bool {
	var w *AssetWarning
	return stderrors.As(err, &w)
}
