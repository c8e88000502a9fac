package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load resume: %w", NotFound("resume not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("did not expect ErrForbidden match")
	}
}

func TestIsMatchesReasonWhenTargetSetsOne(t *testing.T) {
	err := WithReason(KindForbidden, "wrong_password", "password does not match")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected kind match")
	}
	if !errors.Is(err, &Error{Kind: KindForbidden, Reason: "wrong_password"}) {
		t.Fatalf("expected reason match")
	}
	if errors.Is(err, &Error{Kind: KindForbidden, Reason: "not_public"}) {
		t.Fatalf("did not expect mismatched reason to match")
	}
}

func TestCodePrefersReason(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "kind only", err: New(KindConflict, "busy"), want: "conflict"},
		{name: "reason", err: WithReason(KindValidation, "consent_required", "consent first"), want: "consent_required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.want {
				t.Fatalf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindRender, "render pdf", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if KindOf(err) != KindRender {
		t.Fatalf("unexpected kind %q", KindOf(err))
	}
	if err.Error() != "render pdf: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
