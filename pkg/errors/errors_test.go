package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeTransport, cause, "send request")

	if err.Code != ErrCodeTransport {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTransport)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "TRANSPORT_ERROR: send request: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
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
			err:      New(ErrCodeUnauthorized, "client token not set"),
			code:     ErrCodeUnauthorized,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeTransport,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeTransport, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeTransport,
			expected: true,
		},
		{
			name:     "status error",
			err:      &StatusError{Label: "get user failed", StatusCode: 500},
			code:     ErrCodeRemote,
			expected: true,
		},
		{
			name:     "status error behind fmt wrap",
			err:      fmt.Errorf("whoami: %w", &StatusError{Label: "get user failed", StatusCode: 401}),
			code:     ErrCodeRemote,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
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
	if got := GetCode(New(ErrCodeDecode, "bad json")); got != ErrCodeDecode {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeDecode)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeEnv, "GITEA_HOST is not set")); got != "GITEA_HOST is not set" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Label: "get repo failed", StatusCode: 404, Body: "not found"}
	msg := err.Error()

	for _, want := range []string{"get repo failed", "404", "not found"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"octocat", false},
		{"my.repo-name_1", false},
		{"with space", false},
		{"", true},
		{"tab\there", true},
		{"null\x00byte", true},
		{".", true},
		{"..", true},
		{"...", false},
		{"..hidden", false},
	}

	for _, tt := range tests {
		err := ValidateSegment("owner", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSegment(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateSegment(%q) code = %v, want %v", tt.value, GetCode(err), ErrCodeInvalidInput)
		}
	}
}

func TestValidateSegments(t *testing.T) {
	if err := ValidateSegments("owner", "o", "repo", "r"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateSegments("owner", "o", "repo", "")
	if err == nil || !strings.Contains(err.Error(), "repo cannot be empty") {
		t.Errorf("ValidateSegments() error = %v, want repo cannot be empty", err)
	}
}
