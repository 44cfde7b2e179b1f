package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, server *httptest.Server, maxAttempts int) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gemini-2.0-flash-exp-image-generation",
		MaxAttempts: maxAttempts,
		HTTPClient:  server.Client(),
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func imageResponse(t *testing.T, data []byte, mime string) string {
	t.Helper()
	resp := geminiGenerateContentResponse{
		Candidates: []geminiCandidate{{
			Content: geminiContent{
				Role: "model",
				Parts: []geminiPart{
					{Text: "Here is your image."},
					{InlineData: &geminiInlineData{
						MimeType: mime,
						Data:     base64.StdEncoding.EncodeToString(data),
					}},
				},
			},
		}},
	}
	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(body)
}

func TestGenerateImageDecodesInlineData(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiGenerateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(imageResponse(t, []byte("png-bytes"), "image/png")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	payload, err := client.GenerateImage(context.Background(), "a red circle")
	if err != nil {
		t.Fatalf("GenerateImage error: %v", err)
	}
	if string(payload.Data) != "png-bytes" {
		t.Fatalf("unexpected payload: %q", payload.Data)
	}
	if payload.MimeType != "image/png" {
		t.Fatalf("unexpected mime: %s", payload.MimeType)
	}
	if gotPath != "/models/gemini-2.0-flash-exp-image-generation:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key not passed as query parameter, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	if gotBody.Contents[0].Parts[0].Text != "a red circle" {
		t.Fatalf("prompt not forwarded: %+v", gotBody.Contents[0].Parts[0])
	}
	modalities := gotBody.GenerationConfig.ResponseModalities
	if len(modalities) != 2 || modalities[0] != "TEXT" || modalities[1] != "IMAGE" {
		t.Fatalf("unexpected response modalities: %v", modalities)
	}
}

func TestGenerateImageNoInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"I cannot draw that."}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	_, err := client.GenerateImage(context.Background(), "nothing")
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestGenerateImageDefaultsMimeType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(imageResponse(t, []byte("raw"), "")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	payload, err := client.GenerateImage(context.Background(), "a red circle")
	if err != nil {
		t.Fatalf("GenerateImage error: %v", err)
	}
	if payload.MimeType != "image/png" {
		t.Fatalf("expected png default, got %s", payload.MimeType)
	}
}

func TestEditImageSendsInlineSource(t *testing.T) {
	var gotBody geminiGenerateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(imageResponse(t, []byte("edited"), "image/jpeg")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	payload, err := client.EditImage(context.Background(), "make it blue", []byte("source-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("EditImage error: %v", err)
	}
	if string(payload.Data) != "edited" {
		t.Fatalf("unexpected payload: %q", payload.Data)
	}

	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected image part and instruction part, got %d", len(parts))
	}
	if parts[0].InlineData == nil {
		t.Fatal("first part must carry the source image")
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[0].InlineData.Data)
	if err != nil {
		t.Fatalf("decode inline source: %v", err)
	}
	if string(decoded) != "source-bytes" {
		t.Fatalf("source image not forwarded: %q", decoded)
	}
	if parts[0].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("unexpected source mime: %s", parts[0].InlineData.MimeType)
	}
	if parts[1].Text != "make it blue" {
		t.Fatalf("instruction not forwarded: %q", parts[1].Text)
	}
}

func TestEditImageRequiresSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	if _, err := client.EditImage(context.Background(), "make it blue", nil, "image/png"); err == nil {
		t.Fatal("expected error for missing source image")
	}
}

func TestGenerateImageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, 1)
	_, err := client.GenerateImage(context.Background(), "a red circle")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected provider message in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestGenerateImageRetriesUpToMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(imageResponse(t, []byte("png-bytes"), "image/png")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 3)
	payload, err := client.GenerateImage(context.Background(), "a red circle")
	if err != nil {
		t.Fatalf("GenerateImage error: %v", err)
	}
	if string(payload.Data) != "png-bytes" {
		t.Fatalf("unexpected payload: %q", payload.Data)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGenerateImageSingleAttemptByDefault(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server, 0)
	if _, err := client.GenerateImage(context.Background(), "a red circle"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
