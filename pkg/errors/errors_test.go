package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"invalid date range", InvalidDateRange("check_out must be after check_in"), CodeInvalidDateRange, http.StatusBadRequest},
		{"room unavailable", RoomUnavailable("taken"), CodeRoomUnavailable, http.StatusConflict},
		{"conflict", Conflict("duplicate"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("db unreachable", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := RoomUnavailable("taken")

	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError returned %v, want original", got)
	}

	// Anything else is converted to an internal error carrying the cause.
	plain := errors.New("plain")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("converted code = %s, want %s", converted.Code, CodeInternal)
	}
	if !errors.Is(converted, plain) {
		t.Error("converted error lost its cause")
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("Room")) {
		t.Error("IsAppError rejected an AppError")
	}
	if IsAppError(errors.New("plain")) {
		t.Error("IsAppError accepted a plain error")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("index build failed")
	err := Internal("migration failed", cause)

	msg := err.Error()
	if msg != "INTERNAL_ERROR: migration failed (caused by: index build failed)" {
		t.Errorf("unexpected message: %q", msg)
	}
}
