package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := UnknownField("amount")
	want := "unknown_field: unknown field (field=amount)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(ErrSQL, "insert records", errors.New("disk full"))
	if wrapped.Error() != "sql: insert records: disk full" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrIO, "connect", cause)
	if !errors.Is(err, cause) {
		t.Errorf("wrapped cause should be reachable via errors.Is")
	}
}

func TestIsKind(t *testing.T) {
	err := MalformedCriteria("bad")
	if !IsKind(err, ErrMalformedCriteria) {
		t.Errorf("IsKind should match the error's own kind")
	}
	if IsKind(err, ErrUnknownField) {
		t.Errorf("IsKind should not match a different kind")
	}

	// kind detection survives further wrapping
	outer := fmt.Errorf("search: %w", err)
	if !IsKind(outer, ErrMalformedCriteria) {
		t.Errorf("IsKind should see through fmt.Errorf wrapping")
	}

	if IsKind(errors.New("plain"), ErrSQL) {
		t.Errorf("IsKind should reject foreign errors")
	}
	if IsKind(nil, ErrSQL) {
		t.Errorf("IsKind(nil) should be false")
	}
}
