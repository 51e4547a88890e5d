package utils

import (
	"errors"
	"testing"
)

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError("session.save", "persist snapshot", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause")
	}
	if got := err.Error(); got != "session.save: persist snapshot: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Op(err); got != "session.save" {
		t.Fatalf("unexpected op %q", got)
	}
	if got := Op(cause); got != "" {
		t.Fatalf("expected empty op, got %q", got)
	}
}
