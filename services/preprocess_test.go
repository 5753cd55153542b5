package services

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestProcessInputText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"collapses whitespace", "  what   is\n\talgebra  ", "what is algebra"},
		{"plain text unchanged", "solve for x", "solve for x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProcessInput("text", tt.content); got != tt.want {
				t.Errorf("ProcessInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessInputTextTruncates(t *testing.T) {
	long := strings.Repeat("a", maxTextLength+500)

	got := ProcessInput("text", long)
	if len(got) != maxTextLength {
		t.Errorf("len = %d, want %d", len(got), maxTextLength)
	}
}

func TestProcessInputBinaryModalities(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("payload"))

	tests := []struct {
		name      string
		inputType string
		content   string
		want      string
	}{
		{"valid voice", "voice", encoded, "[Voice input - transcription pending]"},
		{"invalid voice", "voice", "not base64!!", "[Voice input - transcription failed]"},
		{"valid diagram", "diagram", encoded, "[Diagram input - extraction pending]"},
		{"invalid diagram", "diagram", "not base64!!", "[Diagram input - extraction failed]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProcessInput(tt.inputType, tt.content); got != tt.want {
				t.Errorf("ProcessInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("payload"))

	tests := []struct {
		name      string
		inputType string
		content   string
		wantErr   bool
	}{
		{"valid text", "text", "what is algebra", false},
		{"empty content", "text", "", true},
		{"oversized text", "text", strings.Repeat("a", maxRawTextLength+1), true},
		{"valid voice", "voice", encoded, false},
		{"bad base64 voice", "voice", "not base64!!", true},
		{"valid diagram", "diagram", encoded, false},
		{"unknown type", "hologram", "content", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.inputType, tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInputRejectsOversizedBinary(t *testing.T) {
	big := base64.StdEncoding.EncodeToString(make([]byte, maxBinarySizeBytes+1))

	if err := ValidateInput("voice", big); err == nil {
		t.Error("expected error for oversized payload")
	}
}
