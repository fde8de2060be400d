package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownParent, "entry %q extends unknown parent", "child")

	if err.Code != ErrCodeUnknownParent {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnknownParent)
	}

	if err.Message != `entry "child" extends unknown parent` {
		t.Errorf("Message = %v, want %v", err.Message, `entry "child" extends unknown parent`)
	}

	expected := `UNKNOWN_PARENT: entry "child" extends unknown parent`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidDocument, cause, "failed to decode")

	if err.Code != ErrCodeInvalidDocument {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDocument)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMissingVersion, "test"),
			code:     ErrCodeMissingVersion,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMissingVersion, "test"),
			code:     ErrCodeCyclicExtends,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInvalidDocument, New(ErrCodeMalformedEntry, "inner"), "outer"),
			code:     ErrCodeInvalidDocument,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeMissingVersion,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeMissingVersion,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeCyclicExtends, "test"),
			expected: ErrCodeCyclicExtends,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestList_ErrOrNil(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		var l List
		if got := l.ErrOrNil(); got != nil {
			t.Errorf("ErrOrNil() = %v, want nil", got)
		}
	})

	t.Run("single error unwraps", func(t *testing.T) {
		var l List
		inner := New(ErrCodeMissingVersion, "no version")
		l.Append(inner)
		if got := l.ErrOrNil(); got != error(inner) {
			t.Errorf("ErrOrNil() = %v, want %v", got, inner)
		}
	})

	t.Run("nil append ignored", func(t *testing.T) {
		var l List
		l.Append(nil)
		if l.Len() != 0 {
			t.Errorf("Len() = %d, want 0", l.Len())
		}
	})

	t.Run("multiple errors aggregate", func(t *testing.T) {
		var l List
		l.Append(New(ErrCodeMissingVersion, "a"))
		l.Append(New(ErrCodeUnknownParent, "b"))

		err := l.ErrOrNil()
		if err == nil {
			t.Fatal("ErrOrNil() = nil, want error")
		}
		if !strings.HasPrefix(err.Error(), "2 errors:") {
			t.Errorf("Error() = %q, want %q prefix", err.Error(), "2 errors:")
		}
	})
}

func TestList_Has(t *testing.T) {
	var l List
	l.Append(New(ErrCodeMissingVersion, "a"))
	l.Append(New(ErrCodeUnknownParent, "b"))

	if !l.Has(ErrCodeUnknownParent) {
		t.Error("Has(UNKNOWN_PARENT) = false, want true")
	}
	if l.Has(ErrCodeCyclicExtends) {
		t.Error("Has(CYCLIC_EXTENDS) = true, want false")
	}
}

func TestAnyCode(t *testing.T) {
	var l List
	l.Append(New(ErrCodeMissingVersion, "a"))
	l.Append(New(ErrCodeCyclicExtends, "b"))
	aggregate := l.ErrOrNil()

	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"code in aggregate", aggregate, ErrCodeCyclicExtends, true},
		{"code not in aggregate", aggregate, ErrCodeUnknownParent, false},
		{"plain coded error", New(ErrCodeNotFound, "x"), ErrCodeNotFound, true},
		{"nil error", nil, ErrCodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnyCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("AnyCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}
