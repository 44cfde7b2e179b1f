package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/providers/image"
	"server/pkg/zip"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type imageJSON struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Prompt    string    `json:"prompt"`
	ImagePath string    `json:"imagePath"`
	CreatedAt time.Time `json:"createdAt"`
}

type paginationJSON struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

func toImageJSON(record domain.Image) imageJSON {
	return imageJSON{
		ID:        record.ID,
		Type:      string(record.Type),
		Prompt:    record.Prompt,
		ImagePath: record.MediaURL,
		CreatedAt: record.CreatedAt,
	}
}

// GenerateImage handles POST /api/image/generate.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	prompt, err := validatePrompt(req.Prompt)
	if err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	imageURL, err := a.Images.Generate(r.Context(), prompt)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Image generated successfully",
		"data":    map[string]string{"imageUrl": imageURL},
	})
}

// ModifyImage handles POST /api/image/modify (multipart: prompt + image).
func (a *App) ModifyImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.fail(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	prompt, err := validatePrompt(r.FormValue("prompt"))
	if err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.fail(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, a.MaxUploadBytes+1))
	if err != nil {
		a.fail(w, http.StatusBadRequest, "Failed to read image file")
		return
	}
	if int64(len(data)) > a.MaxUploadBytes {
		a.fail(w, http.StatusBadRequest, "Image file exceeds the size limit")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		a.fail(w, http.StatusBadRequest, "Only image uploads are allowed")
		return
	}

	imageURL, err := a.Images.Modify(r.Context(), prompt, image.Payload{Data: data, MimeType: mime})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Image modified successfully",
		"data":    map[string]string{"imageUrl": imageURL},
	})
}

// ListImages handles GET /api/image/all.
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := domain.ListFilter{
		Type:  domain.OperationType(r.URL.Query().Get("type")),
		Page:  page,
		Limit: limit,
	}

	records, pagination, err := a.Images.List(r.Context(), filter)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	data := make([]imageJSON, 0, len(records))
	for _, record := range records {
		data = append(data, toImageJSON(record))
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"pagination": paginationJSON{
			CurrentPage:  pagination.CurrentPage,
			TotalPages:   pagination.TotalPages,
			TotalItems:   pagination.TotalItems,
			ItemsPerPage: pagination.ItemsPerPage,
		},
	})
}

// GetImage handles GET /api/image/{id}.
func (a *App) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validateImageID(id); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := a.Images.Get(r.Context(), id)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toImageJSON(*record),
	})
}

// DeleteImage handles DELETE /api/image/{id}.
func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validateImageID(id); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.Images.Delete(r.Context(), id); err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Image deleted successfully",
		"data":    map[string]string{"id": id},
	})
}

// ExportImages handles GET /api/image/export, streaming the newest images of
// the requested type as a zip archive.
func (a *App) ExportImages(w http.ResponseWriter, r *http.Request) {
	opType := domain.OperationType(r.URL.Query().Get("type"))

	items, err := a.Images.Export(r.Context(), opType)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	entries := make([]zip.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, zip.Entry{Name: item.Name, Data: item.Data})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, "Failed to build archive")
		return
	}

	name := "images"
	if opType.Valid() {
		name = "images-" + string(opType)
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// serviceError maps orchestrator failures onto the HTTP contract: 404 for
// missing records, 400 for rejected input, 500 for everything else. Messages
// stay generic; details go to the log only.
func (a *App) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.fail(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, domain.ErrInvalidPrompt):
		a.fail(w, http.StatusBadRequest, "Prompt must be between 1 and 1000 characters")
	case errors.Is(err, domain.ErrGenerationEmpty), errors.Is(err, domain.ErrGenerationFailed):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("image generation failed")
		a.fail(w, http.StatusInternalServerError, "Failed to generate image")
	case errors.Is(err, domain.ErrUploadFailed):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("object upload failed")
		a.fail(w, http.StatusInternalServerError, "Failed to store image")
	case errors.Is(err, domain.ErrPersistFailed):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("record persistence failed")
		a.fail(w, http.StatusInternalServerError, "Failed to save image record")
	case errors.Is(err, domain.ErrMalformedRecord):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("stored record is malformed")
		a.fail(w, http.StatusInternalServerError, "Stored image record is malformed")
	case errors.Is(err, domain.ErrDeleteFailed):
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("object deletion failed")
		a.fail(w, http.StatusInternalServerError, "Failed to delete image")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		a.fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
