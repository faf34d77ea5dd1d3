package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorString_NoCause(t *testing.T) {
	err := New(KindNotFound, "user_not_found", "User not found")

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error string")
	}
}

func TestError_ErrorString_WithCause(t *testing.T) {
	root := errors.New("root cause")
	err := Wrap(KindInternal, "hash_failed", "hash failed", root)

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
}

func TestError_Unwrap(t *testing.T) {
	root := errors.New("root")
	err := Wrap(KindInternal, "internal_error", "internal", root)

	if errors.Unwrap(err) != root {
		t.Fatalf("unwrap did not return cause")
	}
}

func TestWithMeta_AttachesMeta(t *testing.T) {
	err := ErrMissingField("email")

	if err.Meta == nil {
		t.Fatalf("expected meta to be set")
	}
	if err.Meta["field"] != "email" {
		t.Fatalf("unexpected meta value: %+v", err.Meta)
	}
}

func TestErrMissingFields_MetaPerField(t *testing.T) {
	err := ErrMissingFields("All fields are required", "email", "username")

	if err.Message != "All fields are required" {
		t.Fatalf("unexpected message: %q", err.Message)
	}
	if err.Meta["field_0"] != "email" || err.Meta["field_1"] != "username" {
		t.Fatalf("unexpected meta: %+v", err.Meta)
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := ErrSetupTokenInvalid()

	if !Is(err, CodeSetupTokenInvalid) {
		t.Fatalf("expected code match")
	}
	if Is(err, "something_else") {
		t.Fatalf("unexpected code match")
	}
}

func TestIs_NonDomainError(t *testing.T) {
	err := errors.New("plain error")

	if Is(err, CodeSetupTokenInvalid) {
		t.Fatalf("should not match non-domain error")
	}
}

func TestCode_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrUserNotFound())

	if got := Code(wrapped); got != "user_not_found" {
		t.Fatalf("expected user_not_found, got %q", got)
	}
	if got := Code(errors.New("x")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestKinds(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		kind ErrKind
	}{
		{"invalid field", ErrInvalidField("email", "bad format"), KindValidation},
		{"setup token", ErrSetupTokenInvalid(), KindAuth},
		{"current password", ErrCurrentPasswordIncorrect(), KindAuth},
		{"user not found", ErrUserNotFound(), KindNotFound},
		{"no users", ErrNoUsers(), KindNotFound},
		{"username exists", ErrUsernameAlreadyExists(), KindConflict},
		{"db", ErrDBUnavailable(errors.New("x")), KindInfrastructure},
		{"notify", ErrNotificationFailed(errors.New("x")), KindInfrastructure},
		{"hash", ErrHashFailed(errors.New("x")), KindInternal},
		{"workspace off", ErrWorkspaceNotConfigured(), KindUnavailable},
		{"workspace rejected", ErrWorkspaceRejected(errors.New("x")), KindUpstream},
	}

	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("%s: expected kind %q, got %q", c.name, c.kind, c.err.Kind)
		}
	}
}

func TestRateLimitedError(t *testing.T) {
	err := ErrRateLimited("set_password")
	if err.Kind != KindRateLimited {
		t.Fatalf("unexpected kind")
	}
	if err.Meta["scope"] != "set_password" {
		t.Fatalf("unexpected meta")
	}
}
