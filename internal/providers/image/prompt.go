package image

import "strings"

// BuildModifyInstruction wraps the user's prompt with the instruction frame
// sent alongside a source image. The frame keeps the model anchored to the
// provided picture instead of generating an unrelated one.
func BuildModifyInstruction(prompt string) string {
	parts := []string{
		"Modify the provided image according to the following instruction:",
		strings.TrimSpace(prompt),
		"Keep the original subject recognizable and return the result as an image.",
	}
	return strings.Join(parts, " ")
}
