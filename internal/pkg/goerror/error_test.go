package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "business not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "business bad request", err: NewBusiness("Invalid OTP", CodeBadRequest), want: http.StatusBadRequest},
		{name: "too many requests", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "delivery", err: NewDelivery(errors.New("smtp: 554"), "Failed to send"), want: http.StatusBadGateway},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}
			if got := gerr.StatusCode(); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewDeliveryKeepsCause(t *testing.T) {
	// Arrange
	cause := errors.New("dial tcp 127.0.0.1:25: connection refused")

	// Act
	err := NewDelivery(cause, "Failed to send verification code")

	// Assert
	if !errors.Is(err, cause) {
		t.Fatal("expected delivery error to wrap the transport cause")
	}
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Msg() != "Failed to send verification code" {
		t.Fatalf("unexpected user message %q", gerr.Msg())
	}
	if gerr.Type() != TypeServer || gerr.Code() != CodeBadGateway {
		t.Fatalf("unexpected classification: %s", gerr.String())
	}
}

func TestNewInvalidInputFields(t *testing.T) {
	err := NewInvalidInput(nil, "subject", "Valid email address is required")

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if got := gerr.Fields()["subject"]; got != "Valid email address is required" {
		t.Fatalf("unexpected field message %q", got)
	}

	odd := NewInvalidInput(nil, "subject")
	if !errors.As(odd, &gerr) || gerr.Code() != CodeInvalidFormat {
		t.Fatal("odd key/value pairs must fall back to invalid format")
	}
}
