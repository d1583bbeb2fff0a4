package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := Validation("missing fields", "phone", "address")
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation kind")
	}
	if IsKind(err, KindProvider) {
		t.Fatalf("kinds must not cross-match")
	}
	if IsKind(errors.New("plain"), KindValidation) {
		t.Fatalf("untyped errors carry no kind")
	}
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	inner := Precondition("agreement has already concluded")
	wrapped := fmt.Errorf("cancel failed: %w", inner)
	if !IsKind(wrapped, KindPrecondition) {
		t.Fatalf("expected kind to survive wrapping")
	}
}

func TestIsRetryable(t *testing.T) {
	transient := Provider("provider unreachable", true, errors.New("dial tcp: timeout"))
	definitive := Provider("document rejected", false, nil)

	if !IsRetryable(transient) {
		t.Fatalf("transient provider error should be retryable")
	}
	if IsRetryable(definitive) {
		t.Fatalf("definitive provider error should not be retryable")
	}
	if IsRetryable(Conflict("duplicate")) {
		t.Fatalf("non-provider kinds are never retryable")
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("required information is missing", "national_id", "birth_date")
	typed, ok := AsError(err)
	if !ok {
		t.Fatalf("expected typed error")
	}
	if len(typed.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", typed.Fields)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Provider("envelope creation failed", true, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap to expose the cause")
	}
}
