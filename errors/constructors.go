package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// NotFound creates an error for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// InvalidInput creates an error for a rejected request field.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates an error for struct validation failures.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// UnsupportedFileType rejects an upload whose extension is not accepted.
func UnsupportedFileType(name string, accepted []string) *AppError {
	return &AppError{
		Code:       ErrCodeUnsupportedFile,
		Message:    fmt.Sprintf("%s: unsupported file type, expected one of %s", name, strings.Join(accepted, ", ")),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"file_name": name},
	}
}

// FileTooLarge rejects an upload above the size limit.
func FileTooLarge(name string, limit int64) *AppError {
	return &AppError{
		Code:       ErrCodeFileTooLarge,
		Message:    fmt.Sprintf("%s: file exceeds the %d byte limit", name, limit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details:    map[string]any{"file_name": name, "limit": limit},
	}
}

// Unauthorized creates an error for a request without a valid session.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates an error for an authenticated caller lacking permission.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// FeatureDisabled reports that an administrator turned a feature off.
func FeatureDisabled(feature string) *AppError {
	return &AppError{
		Code:       ErrCodeFeatureDisabled,
		Message:    "This feature is currently disabled by your administrator.",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"feature": feature},
	}
}

// TokenExpired creates an error for an expired session token.
func TokenExpired() *AppError {
	return &AppError{
		Code: ErrCodeTokenExpired, Message: "Your session has expired. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates an error for a malformed or forged session token.
func InvalidToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidToken, Message: "Invalid authentication token. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotConfigured reports a dependency whose settings are incomplete.
func NotConfigured(service string) *AppError {
	return &AppError{
		Code:       ErrCodeNotConfigured,
		Message:    fmt.Sprintf("Configuration missing for %s.", service),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"service": service},
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// DatabaseError wraps a persistence failure.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// StorageError wraps a blob storage failure.
func StorageError(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorageError, Message: "A storage error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"operation": op}, Cause: cause,
	}
}

// ExternalServiceError wraps a failure reported by a remote service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// ServiceUnavailable reports a dependency that is temporarily down.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// RateLimited reports a caller that exceeded its request budget.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please slow down.", http.StatusTooManyRequests)
}
