package image

import (
	"context"
	"errors"
	"fmt"

	"server/internal/domain"
	"server/internal/providers/genai"
)

// GeminiGenerator adapts the Gemini client to the Generator contract.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Payload, error) {
	payload, err := g.client.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, mapGenaiError(err)
	}
	return &Payload{Data: payload.Data, MimeType: payload.MimeType}, nil
}

func (g *GeminiGenerator) Modify(ctx context.Context, prompt string, source Payload) (*Payload, error) {
	payload, err := g.client.EditImage(ctx, BuildModifyInstruction(prompt), source.Data, source.MimeType)
	if err != nil {
		return nil, mapGenaiError(err)
	}
	return &Payload{Data: payload.Data, MimeType: payload.MimeType}, nil
}

func mapGenaiError(err error) error {
	if errors.Is(err, genai.ErrNoImage) {
		return domain.ErrGenerationEmpty
	}
	return fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
}

var _ Generator = (*GeminiGenerator)(nil)
