package logutil

import (
	"strings"
	"testing"
)

func TestRedactKey(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"short key", "sk-12345", "********"},
		{"empty", "", "********"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactKey(tt.in); got != tt.expected {
				t.Errorf("RedactKey(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "hello", "hello"},
		{"newlines escaped", "a\nb\r\nc", "a\\nb\\n\\nc"},
		{"tabs escaped", "a\tb", "a\\tb"},
		{"control chars replaced", "a\x01b\x7fc", "a?b?c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTextTruncates(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := SanitizeText(long)
	if !strings.HasSuffix(got, "...") {
		t.Error("long text should be truncated with an ellipsis")
	}
	if len(got) != 103 {
		t.Errorf("truncated length = %d, expected 103", len(got))
	}
}
