package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoImage is returned when the provider answered successfully but none of
// the returned content parts carried inline image data.
var ErrNoImage = errors.New("genai: response contained no image data")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// Client is a thin facade over the Gemini generateContent API, fixed to a
// single model and a dual text+image response modality.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxAttempts int
	httpClient  *http.Client
	logger      zerolog.Logger
}

// ImagePayload is the decoded binary image returned by the provider.
type ImagePayload struct {
	Data     []byte
	MimeType string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. Callers may provide a nil HTTP
// client; a reusable one with a sensible timeout will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.0-flash-exp-image-generation"
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxAttempts: maxAttempts,
		httpClient:  client,
		logger:      opts.Logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateImage asks the model to produce an image from the prompt alone.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*ImagePayload, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	return c.generate(ctx, payload)
}

// EditImage sends the source image inline alongside the instruction and asks
// the model for a reworked image.
func (c *Client) EditImage(ctx context.Context, instruction string, image []byte, mimeType string) (*ImagePayload, error) {
	if len(image) == 0 {
		return nil, errors.New("genai: source image is required")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
					{Text: instruction},
				},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	return c.generate(ctx, payload)
}

func (c *Client) generate(ctx context.Context, payload geminiGenerateContentRequest) (*ImagePayload, error) {
	var response geminiGenerateContentResponse
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		response = geminiGenerateContentResponse{}
		err = c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response)
		if err == nil {
			break
		}
		if ctx.Err() != nil || attempt == c.maxAttempts {
			return nil, err
		}
		wait := time.Duration(attempt) * 500 * time.Millisecond
		c.logger.Warn().Err(err).Str("model", c.model).Msgf("genai: attempt %d failed; retrying in %s", attempt, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// The first part carrying inline binary data wins; text parts are skipped.
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("genai: decode inline data: %w", err)
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			c.logger.Debug().Str("model", c.model).Int("bytes", len(data)).Msg("genai: received inline image")
			return &ImagePayload{Data: data, MimeType: mime}, nil
		}
	}

	return nil, ErrNoImage
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
