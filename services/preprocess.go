package services

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	maxTextLength      = 10000
	maxRawTextLength   = 50000
	maxBinarySizeBytes = 5 * 1024 * 1024
)

// ProcessInput normalizes learner input per modality and returns text the
// agent pipeline can work with. Voice and diagram payloads arrive base64
// encoded; without a transcription or OCR backend they reduce to
// placeholder text so the pipeline still runs.
func ProcessInput(inputType, content string) string {
	switch inputType {
	case "voice":
		return processVoice(content)
	case "diagram":
		return processDiagram(content)
	default:
		return processText(content)
	}
}

func processText(content string) string {
	processed := strings.Join(strings.Fields(content), " ")
	if len(processed) > maxTextLength {
		processed = processed[:maxTextLength]
	}
	return processed
}

func processVoice(content string) string {
	if _, err := base64.StdEncoding.DecodeString(content); err != nil {
		return "[Voice input - transcription failed]"
	}
	return "[Voice input - transcription pending]"
}

func processDiagram(content string) string {
	if _, err := base64.StdEncoding.DecodeString(content); err != nil {
		return "[Diagram input - extraction failed]"
	}
	return "[Diagram input - extraction pending]"
}

// ValidateInput checks modality and size limits before processing.
func ValidateInput(inputType, content string) error {
	if content == "" {
		return fmt.Errorf("empty content")
	}

	switch inputType {
	case "text":
		if len(content) > maxRawTextLength {
			return fmt.Errorf("text too long (max %d characters)", maxRawTextLength)
		}
	case "voice", "diagram":
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return fmt.Errorf("invalid base64 encoding")
		}
		if len(decoded) > maxBinarySizeBytes {
			return fmt.Errorf("file too large: %.2fMB (max 5MB)", float64(len(decoded))/(1024*1024))
		}
	default:
		return fmt.Errorf("invalid input type: %s", inputType)
	}

	return nil
}
