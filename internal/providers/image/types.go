package image

import "context"

// Payload carries raw image bytes and their MIME type between the provider
// and the orchestration pipeline.
type Payload struct {
	Data     []byte
	MimeType string
}

// Generator produces images from prompts. Modify additionally receives the
// source image to rework. Implementations return domain error kinds so the
// orchestrator never inspects provider-specific failures.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Payload, error)
	Modify(ctx context.Context, prompt string, source Payload) (*Payload, error)
}
