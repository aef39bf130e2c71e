package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("no such file")
	err := NewImageLoadError("failed to load image", cause)

	want := "image_load: failed to load image (caused by: no such file)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	bare := NewUsageError("expected 2 arguments", nil)
	if bare.Error() != "usage: expected 2 arguments" {
		t.Errorf("Unexpected message: %q", bare.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInputError("read failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestIsType_Wrapped(t *testing.T) {
	err := fmt.Errorf("normalize input: %w", NewImageLoadError("decode failed", nil))

	if !IsType(err, ErrorTypeImageLoad) {
		t.Error("Expected wrapped error to be classified as image_load")
	}
	if IsType(err, ErrorTypeUsage) {
		t.Error("Did not expect wrapped error to be classified as usage")
	}
	if IsType(errors.New("plain"), ErrorTypeImageLoad) {
		t.Error("Plain errors have no type")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage", NewUsageError("x", nil), ExitUsage},
		{"image load", NewImageLoadError("x", nil), ExitImageLoad},
		{"validation", NewValidationError("x", nil), ExitImageLoad},
		{"input", NewInputError("x", nil), ExitInput},
		{"config", NewConfigError("x", nil), ExitInternal},
		{"wrapped", fmt.Errorf("ctx: %w", NewUsageError("x", nil)), ExitUsage},
		{"plain", errors.New("x"), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}
