package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/voicecanvas/voicecanvas/internal/background"
	"github.com/voicecanvas/voicecanvas/internal/config"
	"github.com/voicecanvas/voicecanvas/internal/database"
	"github.com/voicecanvas/voicecanvas/internal/embedding"
	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/notify"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/queue/workers"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Generation jobs update gallery rows, so the worker cannot run without
	// the database.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
		slog.Warn("migrations failed", "error", err)
	}

	embedder := embedding.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	gallerySvc := gallery.NewService(db, embedder)
	recorder := usage.NewRecorder(db)
	notifier := notify.NewDispatcher(cfg.Notify.SigningSecret)

	generators := imagegen.NewRegistry(cfg.Images.DefaultProvider)
	generators.Register(imagegen.NewBria(imagegen.BriaConfig{
		APIKey:       cfg.Bria.APIKey,
		BaseURL:      cfg.Bria.BaseURL,
		ModelVersion: cfg.Bria.ModelVersion,
	}))
	generators.Register(imagegen.NewOpenAI(cfg.OpenAI.APIKey))

	remover := background.NewClient(cfg.Bria.APIKey, cfg.Bria.BaseURL)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
		},
	)

	mux := asynq.NewServeMux()

	genWorker := workers.NewGenerationWorker(gallerySvc, generators, recorder, notifier)
	mux.HandleFunc(queue.TypeImageGenerate, genWorker.ProcessTask)

	bgWorker := workers.NewBackgroundWorker(remover, recorder, notifier)
	mux.HandleFunc(queue.TypeBackgroundRemove, bgWorker.ProcessTask)

	slog.Info("starting worker", "concurrency", 5)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
