package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid guid", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"valid api name", "Check_Credit", false},
		{"valid with dot", "decision.1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " foo", true},
		{"trailing space", "foo ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateElementID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateProgress(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"start", 0, false},
		{"middle", 0.5, false},
		{"end", 1, false},
		{"negative", -0.1, true},
		{"overshoot", 1.01, true},
		{"nan", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateProgress(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateProgress(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
