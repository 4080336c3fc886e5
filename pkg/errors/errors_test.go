package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCloneKeepsSentinelIdentity(t *testing.T) {
	err := Clone(ErrConflict, "session already archived")
	if !errors.Is(err, ErrConflict) {
		t.Fatal("clone should still match its sentinel")
	}
	if err.Message != "session already archived" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if ErrConflict.Message == err.Message {
		t.Fatal("clone must not mutate the sentinel")
	}
}

func TestOnFieldAnnotations(t *testing.T) {
	err := OnField(ErrFieldConstraint, "student", "minor_department", "distinct_minor_major", "minor and major must differ")
	if !errors.Is(err, ErrFieldConstraint) {
		t.Fatal("field annotation should preserve the sentinel code")
	}
	if err.Entity != "student" || err.Field != "minor_department" || err.Rule != "distinct_minor_major" {
		t.Fatalf("unexpected annotations: %+v", err)
	}
	if err.Status != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", err.Status)
	}
}

func TestFromErrorNormalisesUnknownErrors(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	normalised := FromError(plain)
	if normalised.Code != ErrInternal.Code {
		t.Fatalf("unexpected code: %s", normalised.Code)
	}
	if !errors.Is(normalised, plain) {
		t.Fatal("wrapped cause should unwrap to the original error")
	}
}

func TestFromErrorPassesTypedErrorsThrough(t *testing.T) {
	wrapped := fmt.Errorf("lookup failed: %w", Clone(ErrNotFound, "person not found"))
	normalised := FromError(wrapped)
	if normalised.Code != ErrNotFound.Code {
		t.Fatalf("unexpected code: %s", normalised.Code)
	}
}
