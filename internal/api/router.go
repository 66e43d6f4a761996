package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicecanvas/voicecanvas/internal/api/handlers"
	"github.com/voicecanvas/voicecanvas/internal/api/middleware"
	"github.com/voicecanvas/voicecanvas/internal/audio"
	"github.com/voicecanvas/voicecanvas/internal/background"
	"github.com/voicecanvas/voicecanvas/internal/config"
	"github.com/voicecanvas/voicecanvas/internal/embedding"
	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/prompt"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/session"
	"github.com/voicecanvas/voicecanvas/internal/transcribe"
	"github.com/voicecanvas/voicecanvas/internal/usage"
	"github.com/voicecanvas/voicecanvas/internal/voice"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no session)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store := session.NewStore(rt.redis, rt.cfg.Session.TTL)
	tokens := session.NewTokens(rt.cfg.Session.JWTSecret, rt.cfg.Session.TTL)
	sessionMW := session.NewMiddleware(tokens, store)

	recorder := usage.NewRecorder(rt.db)
	normalizer := audio.NewNormalizer(rt.cfg.Audio.FFmpegBin)
	engine := transcribe.NewEngine(transcribe.Config{
		BaseURL:     rt.cfg.Whisper.BaseURL,
		CPUBaseURL:  rt.cfg.Whisper.CPUBaseURL,
		Device:      rt.cfg.Whisper.Device,
		DefaultSize: rt.cfg.Whisper.DefaultModelSize,
		Timeout:     rt.cfg.Whisper.Timeout,
	})
	voiceSvc := voice.NewService(normalizer, engine, store, recorder)

	embedder := embedding.NewService(rt.cfg.OpenAI.APIKey, rt.cfg.OpenAI.EmbeddingModel)
	gallerySvc := gallery.NewService(rt.db, embedder)

	generators := imagegen.NewRegistry(rt.cfg.Images.DefaultProvider)
	generators.Register(imagegen.NewBria(imagegen.BriaConfig{
		APIKey:       rt.cfg.Bria.APIKey,
		BaseURL:      rt.cfg.Bria.BaseURL,
		ModelVersion: rt.cfg.Bria.ModelVersion,
	}))
	generators.Register(imagegen.NewOpenAI(rt.cfg.OpenAI.APIKey))

	var rewriter prompt.Rewriter
	if rt.cfg.Prompts.RewriteBackend == "anthropic" {
		rewriter = prompt.NewAnthropicRewriter(rt.cfg.Anthropic.APIKey, rt.cfg.Anthropic.Model)
	} else {
		rewriter = prompt.NewBriaRewriter(rt.cfg.Bria.APIKey, rt.cfg.Bria.BaseURL)
	}

	remover := background.NewClient(rt.cfg.Bria.APIKey, rt.cfg.Bria.BaseURL)
	queueClient := queue.NewClient(rt.cfg.Redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(sessionMW.Attach)

		sessH := handlers.NewSessionHandler(store, tokens)
		r.Post("/sessions", sessH.Create)
		r.Get("/sessions/current", sessH.Current)
		r.Delete("/sessions/current", sessH.Clear)

		voiceH := handlers.NewVoiceHandler(voiceSvc)
		r.Post("/voice/transcriptions", voiceH.Transcribe)

		promptH := handlers.NewPromptHandler(rewriter, recorder)
		r.Route("/prompts", func(r chi.Router) {
			r.Post("/enhance", promptH.Enhance)
			r.Post("/rewrite", promptH.Rewrite)
		})

		imgH := handlers.NewImageHandler(gallerySvc, generators, queueClient, recorder)
		bgH := handlers.NewBackgroundHandler(remover, queueClient, recorder)
		r.Route("/images", func(r chi.Router) {
			r.Get("/", imgH.List)
			r.Get("/search", imgH.Search)
			r.Post("/generations", imgH.Generate)
			r.Post("/generations/async", imgH.GenerateAsync)
			r.Get("/generations/{id}", imgH.GetGeneration)
			r.Get("/{id}/content", imgH.Content)

			r.Post("/background-removals", bgH.Remove)
			r.Post("/background-removals/async", bgH.RemoveAsync)
		})
	})

	return r
}
