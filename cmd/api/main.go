package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/genai"
	"server/internal/providers/image"
	"server/internal/service"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.RunMigrations(cfg, logger, 5, 3*time.Second); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var store storage.ObjectStore
	switch cfg.StorageDriver {
	case infra.StorageDriverMinio:
		store, err = storage.NewMinioStore(cfg)
	default:
		store, err = storage.NewFileStore(cfg.StoragePath, cfg.StoragePublicURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	genaiClient, err := genai.NewClient(genai.Options{
		APIKey:      cfg.GeminiAPIKey,
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		MaxAttempts: cfg.GeminiMaxAttempts,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}

	images := service.NewImageService(
		image.NewGeminiGenerator(genaiClient),
		store,
		repo.NewImageRepository(infra.NewSQLRunner(dbpool, logger)),
		cfg.UploadFolder,
		logger,
	)

	app := handlers.NewApp(images, logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", genaiClient.Model()).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
