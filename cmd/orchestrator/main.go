package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"coursegpt/internal/config"
	"coursegpt/internal/logger"
	"coursegpt/internal/orchestrator/relay"
	"coursegpt/internal/pgmq"
	"coursegpt/internal/pubsub"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "relay", "Orchestrator mode: relay|setup")
	flag.Parse()

	// Initialize logger
	logger := logger.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if cfg.PGMQCourseEventsQueue == "" {
		logger.Fatal().Msg("PGMQ_COURSE_EVENTS_QUEUE is not set")
	}
	if cfg.PubSubCourseEventsTopic == "" {
		logger.Fatal().Msg("PUBSUB_COURSE_EVENTS_TOPIC is not set")
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize DB connection
	pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
	}
	logger.Info().Msg("Database connection established")

	// Initialize PGMQ client
	pgmqClient := pgmq.New(pool)
	logger.Info().Msg("PGMQ client initialized")

	publisher, err := pubsub.NewPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Pub/Sub publisher")
		}
	}()

	// Dispatch to the selected orchestrator
	var runErr error
	switch *mode {
	case "relay":
		runErr = relay.New(pgmqClient, publisher, relay.OptionsFromConfig(cfg), logger).Run(ctx)
	case "setup":
		runErr = setup(ctx, cfg, pgmqClient, publisher, logger)
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, runErr)
	}

	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}

// setup creates the outbox queues and the course events topic when they are missing
func setup(ctx context.Context, cfg *config.Config, queues *pgmq.Client, publisher *pubsub.PubSubPublisher, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, q := range []string{cfg.PGMQCourseEventsQueue, cfg.RelayDeadLetterQueue} {
		if err := queues.CreateQueue(ctx, q); err != nil {
			return err
		}
		logger.Info().Str("queue", q).Msg("Queue ready")
	}

	created, err := publisher.EnsureTopic(ctx, cfg.PubSubCourseEventsTopic)
	if err != nil {
		return err
	}
	if created {
		logger.Info().Str("topic", cfg.PubSubCourseEventsTopic).Msg("Created topic")
	} else {
		logger.Info().Str("topic", cfg.PubSubCourseEventsTopic).Msg("Topic already exists")
	}
	return nil
}
