package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/service"
)

// ImageOperations is the slice of the orchestration service the HTTP layer
// consumes. Declared here so handlers can be tested against a stub.
type ImageOperations interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Modify(ctx context.Context, prompt string, source image.Payload) (string, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Image, domain.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Image, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, opType domain.OperationType) ([]service.ExportItem, error)
}

type App struct {
	Images         ImageOperations
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

func NewApp(images ImageOperations, logger zerolog.Logger, maxUploadBytes int64) *App {
	return &App{Images: images, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "error": message})
}
