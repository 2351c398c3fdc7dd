package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("calling provider: %w", HTTPError(401, `{"error":"bad key"}`))

	if !errors.Is(err, ErrHTTP) {
		t.Error("expected wrapped HTTP error to match ErrHTTP")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("HTTP error must not match ErrTransport")
	}

	var aiErr *Error
	if !errors.As(err, &aiErr) {
		t.Fatal("errors.As should find *Error")
	}
	if aiErr.StatusCode != 401 {
		t.Errorf("StatusCode: got %d, want 401", aiErr.StatusCode)
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		err  *Error
		want bool
	}{
		{HTTPError(500, ""), true},
		{WrapError(KindTransport, context.DeadlineExceeded, "dial"), true},
		{NewError(KindParse, "bad json"), false},
		{NewError(KindMissingCredential, "none"), false},
		{NewError(KindConfig, "no endpoint"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := tt.err.Retryable(); got != tt.want {
			t.Errorf("Retryable(%v): got %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestAsError_WrapsForeignErrorsAsTransport(t *testing.T) {
	err := AsError(context.Canceled)
	if err.Kind != KindTransport {
		t.Errorf("Kind: got %s, want transport", err.Kind)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("wrapped error should unwrap to context.Canceled")
	}
	if AsError(nil) != nil {
		t.Error("AsError(nil) should be nil")
	}
}

func TestHTTPError_DefaultMessage(t *testing.T) {
	err := HTTPError(503, "")
	if err.Error() != "http (status 503): unexpected HTTP status 503" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
