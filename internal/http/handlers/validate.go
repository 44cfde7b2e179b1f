package handlers

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxPromptLength = 1000

// validatePrompt trims and bounds the prompt before the orchestrator ever
// sees it.
func validatePrompt(raw string) (string, error) {
	prompt := strings.TrimSpace(raw)
	if prompt == "" {
		return "", errors.New("Prompt is required")
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return "", errors.New("Prompt must be between 1 and 1000 characters")
	}
	return prompt, nil
}

func validateImageID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("Invalid image ID format")
	}
	return nil
}
