package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMissingSeparator, "line %d: no separator", 3)

	if err.Code != ErrCodeMissingSeparator {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMissingSeparator)
	}

	if err.Message != "line 3: no separator" {
		t.Errorf("Message = %v, want %v", err.Message, "line 3: no separator")
	}

	expected := "PARSE_MISSING_SEPARATOR: line 3: no separator"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeIO, cause, "write outlet.out")

	if err.Code != ErrCodeIO {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeIO)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

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
			err:      New(ErrCodeTruncatedStream, "test"),
			code:     ErrCodeTruncatedStream,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeTruncatedStream, "test"),
			code:     ErrCodeIO,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeIO, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeIO,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeIO,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeIO,
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
		{"Error type", New(ErrCodeInvalidCrossReference, "test"), ErrCodeInvalidCrossReference},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
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
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"wrapped", Wrap(ErrCodeIO, errors.New("no such file"), "open inlet.in"), "open inlet.in: no such file"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		code     Code
		parse    bool
		mismatch bool
		input    bool
	}{
		{ErrCodeMissingSeparator, true, false, true},
		{ErrCodeInvalidIndexFormat, true, false, true},
		{ErrCodeInvalidCrossReference, false, false, true},
		{ErrCodeTruncatedStream, false, false, true},
		{ErrCodeTooManyNodes, false, false, true},
		{ErrCodeLengthMismatch, false, true, false},
		{ErrCodeContentMismatch, false, true, false},
		{ErrCodeCrossReferenceMismatch, false, true, false},
		{ErrCodeIO, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := Wrap(ErrCodeIO, New(tt.code, "x"), "outer")
			// The outermost code wins.
			if tt.code != ErrCodeIO && (IsParseError(err) || IsRoundTripMismatch(err)) {
				t.Errorf("outer IO code should hide inner category")
			}

			err = New(tt.code, "x")
			if got := IsParseError(err); got != tt.parse {
				t.Errorf("IsParseError() = %v, want %v", got, tt.parse)
			}
			if got := IsRoundTripMismatch(err); got != tt.mismatch {
				t.Errorf("IsRoundTripMismatch() = %v, want %v", got, tt.mismatch)
			}
			if got := IsInputError(err); got != tt.input {
				t.Errorf("IsInputError() = %v, want %v", got, tt.input)
			}
		})
	}
}
