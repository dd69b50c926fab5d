package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RetryableDetection(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeNotFound, false},
		{ErrCodeServiceUnavailable, true},
		{ErrCodeExternalService, true},
		{ErrCodeFeatureDisabled, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			err := New(tc.code, "msg", http.StatusTeapot)
			if err.Retryable != tc.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tc.retryable)
			}
			if err.HTTPStatus != http.StatusTeapot {
				t.Errorf("HTTPStatus = %d", err.HTTPStatus)
			}
		})
	}
}

func TestConstructors_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"not found", NotFound("document", "d1"), ErrCodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("file", "missing"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"unsupported file", UnsupportedFileType("a.txt", []string{"mp3"}), ErrCodeUnsupportedFile, http.StatusBadRequest},
		{"too large", FileTooLarge("a.mp3", 10), ErrCodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden(""), ErrCodeForbidden, http.StatusForbidden},
		{"feature disabled", FeatureDisabled("enable_audio_file_support"), ErrCodeFeatureDisabled, http.StatusForbidden},
		{"token expired", TokenExpired(), ErrCodeTokenExpired, http.StatusUnauthorized},
		{"invalid token", InvalidToken(), ErrCodeInvalidToken, http.StatusUnauthorized},
		{"not configured", NotConfigured("speech service"), ErrCodeNotConfigured, http.StatusServiceUnavailable},
		{"internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError},
		{"database", DatabaseError(nil), ErrCodeDatabaseError, http.StatusInternalServerError},
		{"storage", StorageError("upload", nil), ErrCodeStorageError, http.StatusInternalServerError},
		{"external", ExternalServiceError("speech", nil), ErrCodeExternalService, http.StatusBadGateway},
		{"rate limited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("Code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("HTTPStatus = %d, want %d", tc.err.HTTPStatus, tc.status)
			}
		})
	}
}

func TestNotFound_EmptyID(t *testing.T) {
	err := NotFound("document", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestNotConfigured_Message(t *testing.T) {
	tests := []struct {
		service string
		want    string
	}{
		{"speech service", "Configuration missing for speech service."},
		{"speech service credentials", "Configuration missing for speech service credentials."},
	}
	for _, tc := range tests {
		if got := NotConfigured(tc.service).Message; got != tc.want {
			t.Errorf("NotConfigured(%q).Message = %q, want %q", tc.service, got, tc.want)
		}
	}
}

func TestUnsupportedFileType_Message(t *testing.T) {
	err := UnsupportedFileType("notes.txt", []string{"aac", "mp3"})
	if !strings.Contains(err.Message, "notes.txt") || !strings.Contains(err.Message, "aac, mp3") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("db connection lost")
	err := DatabaseError(cause)

	if !strings.Contains(err.Error(), "db connection lost") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find cause")
	}
}

func TestWithDetail(t *testing.T) {
	err := Forbidden("").WithDetail("user_id", "u1")
	if err.Details["user_id"] != "u1" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(NotFound("x", "")); got != http.StatusNotFound {
		t.Errorf("StatusOf(NotFound) = %d", got)
	}
	wrapped := fmt.Errorf("wrap: %w", Forbidden(""))
	if got := StatusOf(wrapped); got != http.StatusForbidden {
		t.Errorf("StatusOf(wrapped) = %d", got)
	}
	if got := StatusOf(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain) = %d", got)
	}
}

func TestToAppError(t *testing.T) {
	plain := fmt.Errorf("plain")
	got := ToAppError(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("ToAppError(plain) = %+v", got)
	}

	nf := NotFound("doc", "1")
	if ToAppError(nf) != nf {
		t.Error("expected AppError to pass through unchanged")
	}
}

func TestToResponse(t *testing.T) {
	resp := FeatureDisabled("enable_audio_file_support").ToResponse()
	if resp.Error.Code != ErrCodeFeatureDisabled {
		t.Errorf("code = %s", resp.Error.Code)
	}
	if resp.Error.Details["feature"] != "enable_audio_file_support" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ExternalServiceError("speech", nil)) {
		t.Error("external service errors should be retryable")
	}
	if IsRetryable(NotConfigured("speech")) {
		t.Error("not configured should not be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors should not be retryable")
	}
}
