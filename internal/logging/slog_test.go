package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "test_operation")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := slog.Default()
	result := WithComponent(logger, "summary")
	if result == nil {
		t.Error("WithComponent returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("test_op")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "test_op" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "test_op")
	}
}

func TestSectionAttr(t *testing.T) {
	attr := Section("Action Items")
	if attr.Key != KeySection {
		t.Errorf("Section key = %q, want %q", attr.Key, KeySection)
	}
	if attr.Value.String() != "Action Items" {
		t.Errorf("Section value = %q, want %q", attr.Value.String(), "Action Items")
	}
}

func TestErrAttr(t *testing.T) {
	err := errors.New("something failed")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "something failed" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "something failed")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// A nil error should produce an empty group that slog omits
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"conversation id", "4f40321d-5eeb-4ada-b9e9-008920002ab2"},
		{"email", "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnonymizeID(tt.input)
			if !strings.HasPrefix(result, "id:") {
				t.Errorf("AnonymizeID(%q) = %q, want id: prefix", tt.input, result)
			}
			if strings.Contains(result, tt.input) {
				t.Errorf("AnonymizeID(%q) leaked the input", tt.input)
			}
			// Same input must hash to the same value for correlation
			if again := AnonymizeID(tt.input); again != result {
				t.Errorf("AnonymizeID not deterministic: %q != %q", again, result)
			}
		})
	}
}

func TestAnonymizeIDEmpty(t *testing.T) {
	if result := AnonymizeID(""); result != "" {
		t.Errorf("AnonymizeID(\"\") = %q, want empty", result)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"empty token", "", "<empty>"},
		{"short token", "abc", "[token:3 chars]"},
		{"pat token", "missive_pat-0123456789abcdef", "[token:28 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
			if tt.token != "" && strings.Contains(result, tt.token) {
				t.Errorf("SanitizeToken leaked the token")
			}
		})
	}
}
