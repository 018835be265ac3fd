package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursegpt/internal/api/v1/handler"
	"coursegpt/internal/config"
	"coursegpt/internal/coursetree"
	"coursegpt/internal/generation"
	"coursegpt/internal/middleware"
	"coursegpt/internal/pgmq"
	"coursegpt/internal/pubsub"
	"coursegpt/internal/repository"
	"coursegpt/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP layer is built on
type Dependencies struct {
	Repo      repository.CourseRepository
	Generator generation.Generator
	Events    pubsub.EventPublisher
}

// New connects the configured store, model and event topic and returns the HTTP handler
// with a cleanup function that releases them.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(context.Context), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	var closers []func(context.Context)
	cleanup := func(ctx context.Context) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](ctx)
		}
	}

	// 1. Course store
	repo, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open course store: %w", err)
	}
	closers = append(closers, func(ctx context.Context) {
		if err := repo.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to close course store")
		}
	})

	// 2. Generation model
	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		cleanup(ctx)
		return nil, nil, err
	}
	if closer, ok := gen.(io.Closer); ok {
		closers = append(closers, func(context.Context) { _ = closer.Close() })
	}

	// 3. Course events, through the Postgres outbox when one is configured
	var events pubsub.EventPublisher = pubsub.NoopEventPublisher{}
	switch {
	case cfg.PGMQCourseEventsQueue != "":
		pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
		if err != nil {
			cleanup(ctx)
			return nil, nil, fmt.Errorf("failed to connect to course event queue: %w", err)
		}
		closers = append(closers, func(context.Context) { pool.Close() })
		events = pubsub.NewCourseEventPublisher(pgmq.New(pool), cfg.PGMQCourseEventsQueue, logger)
		logger.Info().Str("queue", cfg.PGMQCourseEventsQueue).Msg("Queueing course events")
	case cfg.PubSubCourseEventsTopic != "":
		publisher, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			cleanup(ctx)
			return nil, nil, err
		}
		closers = append(closers, func(context.Context) { _ = publisher.Close() })
		events = pubsub.NewCourseEventPublisher(publisher, cfg.PubSubCourseEventsTopic, logger)
		logger.Info().Str("topic", cfg.PubSubCourseEventsTopic).Msg("Publishing course events")
	}

	h := NewHandler(cfg, Dependencies{Repo: repo, Generator: gen, Events: events}, logger)
	return h, cleanup, nil
}

// NewHandler wires services, handlers and middleware around deps
func NewHandler(cfg *config.Config, deps Dependencies, logger zerolog.Logger) http.Handler {
	mutator := coursetree.NewMutator(coursetree.UUIDGenerator{}, nil)
	timeout := time.Duration(cfg.GenerationTimeoutSec) * time.Second
	pipeline := generation.NewPipeline(deps.Generator, timeout, logger)

	courseSvc := service.NewCourseService(deps.Repo, mutator, deps.Events, logger)
	generationSvc := service.NewGenerationService(pipeline, deps.Repo, mutator, deps.Events, logger)

	courseHandler := handler.NewCourseHandler(courseSvc, logger)
	generationHandler := handler.NewGenerationHandler(generationSvc, logger)

	var authMiddleware func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		authMiddleware = middleware.AuthMiddleware(cfg.JWTSecret, logger)
	} else {
		logger.Warn().Msg("JWT_SECRET is not set, API is not authenticated")
	}

	humaRouter, api := SetupHumaAPI(cfg, authMiddleware, logger)
	RegisterRoutes(api, courseHandler, generationHandler, logger)

	// Mount the API v1 routes under /v1
	root := chi.NewRouter()
	root.Mount("/v1", http.StripPrefix("/v1", humaRouter))
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(root))
}

// newGenerator returns the Gemini generator, or one that always fails when no API key is
// available so that course editing keeps working.
func newGenerator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (generation.Generator, error) {
	apiKey := cfg.GeminiAPIKey
	if cfg.GeminiAPIKeySecret != "" {
		secrets, err := service.NewSecretManagerService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer secrets.Close()
		apiKey, err = secrets.AccessSecret(ctx, cfg.GeminiAPIKeySecret)
		if err != nil {
			return nil, fmt.Errorf("failed to read Gemini API key secret: %w", err)
		}
	}
	if apiKey == "" {
		logger.Warn().Msg("No Gemini API key configured, generation endpoints will respond 503")
		return generation.UnavailableGenerator{Reason: "no generation API key is configured"}, nil
	}
	return generation.NewGeminiGenerator(ctx, apiKey, cfg.GeminiModel, cfg.GeminiEndpoint, logger)
}
