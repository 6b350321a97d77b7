package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidDomain, "domain name %q has 'sibling' sub-domains", "a(b)(c)")
	if got := err.Error(); !strings.Contains(got, "INVALID_DOMAIN") || !strings.Contains(got, "a(b)(c)") {
		t.Errorf("Error() = %q, want code and offending string", got)
	}

	cause := stderrors.New("exit status 1")
	wrapped := Wrap(ErrCodeCommandFailed, cause, "git clone %s", "https://example.com/x.git")
	if got := wrapped.Error(); !strings.Contains(got, "exit status 1") {
		t.Errorf("wrapped Error() = %q, want cause included", got)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeCycle, "dependency cycle")
	if !Is(err, ErrCodeCycle) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeConflict) {
		t.Error("Is should not match a different code")
	}
	if got := GetCode(err); got != ErrCodeCycle {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeCycle)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		system bool
	}{
		{"cycle is system", New(ErrCodeCycle, "x"), true},
		{"unknown tag is system", New(ErrCodeUnknownTag, "x"), true},
		{"unknown scheme is system", New(ErrCodeUnknownScheme, "x"), true},
		{"invalid domain is user", New(ErrCodeInvalidDomain, "x"), false},
		{"command failure is user", New(ErrCodeCommandFailed, "x"), false},
		{"conflict is user", New(ErrCodeConflict, "x"), false},
		{"plain error is system", stderrors.New("x"), true},
		{"wrapped user failure stays user", Wrap(ErrCodeConflict, stderrors.New("x"), "y"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSystem(tt.err); got != tt.system {
				t.Errorf("IsSystem = %v, want %v", got, tt.system)
			}
			// IsUser is the complement for classified errors; plain errors
			// are neither user failures nor classified.
			if _, ok := tt.err.(*Error); ok {
				if got := IsUser(tt.err); got == tt.system {
					t.Errorf("IsUser = %v, want %v", got, !tt.system)
				}
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeConflict, "update left conflicts in src/kernel")
	if got := UserMessage(err); strings.Contains(got, "VCS_CONFLICT") {
		t.Errorf("UserMessage = %q, should not include the code", got)
	}
}
