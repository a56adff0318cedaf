package errors

import (
	"errors"
	"net/http"
	"testing"
)

// TestNew tests creating a new AppError
func TestNew(t *testing.T) {
	err := New(ErrCodeValidation, "validation failed")

	if err == nil {
		t.Fatal("New() returned nil")
	}

	if err.Code != ErrCodeValidation {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeValidation)
	}

	if err.Message != "validation failed" {
		t.Errorf("Message = %s, want 'validation failed'", err.Message)
	}

	if err.Err != nil {
		t.Error("Err should be nil for New()")
	}
}

// TestWrap tests wrapping an existing error
func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := Wrap(ErrCodeInternal, "wrapped error", originalErr)

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInternal)
	}

	if err.Err != originalErr {
		t.Error("Err should be the original error")
	}
}

// TestAppError_Error tests the Error method
func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := New(ErrCodeValidation, "invalid input")
		if err.Error() != "[E1001] invalid input" {
			t.Errorf("Error() = %s, want '[E1001] invalid input'", err.Error())
		}
	})

	t.Run("with underlying error", func(t *testing.T) {
		originalErr := errors.New("file not found")
		err := Wrap(ErrCodeConfigNotFound, "config error", originalErr)
		if err.Error() != "[E6001] config error: file not found" {
			t.Errorf("Error() = %s, want '[E6001] config error: file not found'", err.Error())
		}
	})
}

// TestAppError_Unwrap tests the Unwrap method
func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(ErrCodeInternal, "message", originalErr)

	if !errors.Is(err, originalErr) {
		t.Error("errors.Is should find the original error through Unwrap")
	}
}

// TestHTTPStatus tests HTTP status code mapping
func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
		want int
	}{
		{"record not found", ErrCodeRecordNotFound, http.StatusNotFound},
		{"unknown metric path", ErrCodeUnknownMetricPath, http.StatusNotFound},
		{"unknown template", ErrCodeUnknownTemplate, http.StatusBadRequest},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"data unavailable", ErrCodeDataUnavailable, http.StatusBadGateway},
		{"conflict", ErrCodeConflict, http.StatusConflict},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"chart rendering", ErrCodeChartRenderingFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "test")
			if got := err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestDomainConstructors tests the domain error constructors
func TestDomainConstructors(t *testing.T) {
	if err := ErrUnknownTemplate("fancy"); err.Code != ErrCodeUnknownTemplate {
		t.Errorf("ErrUnknownTemplate code = %s", err.Code)
	}
	if err := ErrRecordNotFound("abc"); err.Code != ErrCodeRecordNotFound {
		t.Errorf("ErrRecordNotFound code = %s", err.Code)
	}
	if err := ErrMissingChartData(); err.Code != ErrCodeMissingChartData {
		t.Errorf("ErrMissingChartData code = %s", err.Code)
	}
	if err := ErrDataUnavailable(errors.New("boom")); err.Code != ErrCodeDataUnavailable {
		t.Errorf("ErrDataUnavailable code = %s", err.Code)
	}
	if err := ErrUnknownMetricPath("x.y.z"); err.Code != ErrCodeUnknownMetricPath {
		t.Errorf("ErrUnknownMetricPath code = %s", err.Code)
	}
}

// TestHasCode tests code matching on arbitrary errors
func TestHasCode(t *testing.T) {
	err := ErrRecordNotFound("r1")
	if !HasCode(err, ErrCodeRecordNotFound) {
		t.Error("HasCode should match the record not found code")
	}
	if HasCode(err, ErrCodeDataUnavailable) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("HasCode should not match a non-AppError")
	}
}
