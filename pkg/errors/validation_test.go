package errors

import (
	"strings"
	"testing"
)

func TestValidateEventID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "alice", false},
		{"with spaces", "Gaming Lounge", false},
		{"unicode", "Café ☕", false},
		{"with quote", "o'brien", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEventID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEventID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidEvent) {
				t.Errorf("ValidateEventID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidEvent)
			}
		})
	}
}

func TestValidateSeparator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"disabled", "", false},
		{"hash", "#", false},
		{"pipe", "|", false},
		{"two chars", "##", true},
		{"space", " ", true},
		{"tab", "\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeparator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeparator(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "graph.svg", false},
		{"absolute", "/tmp/graph.svg", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "graph\x00.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
