package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/image", func(r chi.Router) {
		r.With(middleware.RateLimit(
			cfg.GenerateRateLimit,
			cfg.RateLimitWindow,
			"Too many image generation requests, please try again later.",
		)).Post("/generate", app.GenerateImage)

		r.With(middleware.RateLimit(
			cfg.ModifyRateLimit,
			cfg.RateLimitWindow,
			"Too many image modification requests, please try again later.",
		)).Post("/modify", app.ModifyImage)

		r.Get("/all", app.ListImages)
		r.Get("/export", app.ExportImages)
		r.Get("/{id}", app.GetImage)
		r.Delete("/{id}", app.DeleteImage)
	})

	// The filesystem driver serves its own objects so returned URLs resolve
	// in development.
	if cfg.StorageDriver == infra.StorageDriverFilesystem {
		fileServer := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(cfg.StoragePath)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}
