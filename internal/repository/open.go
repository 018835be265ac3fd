package repository

import (
	"context"
	"fmt"

	"coursegpt/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Open connects the course store selected by cfg.StoreBackend
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (CourseRepository, error) {
	logger = logger.With().Str("store", cfg.StoreBackend).Logger()

	switch cfg.StoreBackend {
	case config.StoreMemory, "":
		logger.Warn().Msg("Using in-memory course store, data is lost on restart")
		return NewMemoryRepo(), nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Msg("Connected to Postgres course store")
		return NewPostgresRepo(pool), nil

	case config.StoreSurrealDB:
		repo, err := NewSurrealRepo(ctx, cfg.SurrealDBURL, cfg.SurrealDBNamespace, cfg.SurrealDBDatabase, cfg.SurrealDBUser, cfg.SurrealDBPass)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("namespace", cfg.SurrealDBNamespace).Str("database", cfg.SurrealDBDatabase).Msg("Connected to SurrealDB course store")
		return repo, nil

	case config.StoreMongoDB:
		repo, err := NewMongoRepo(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDBDatabase).Msg("Connected to MongoDB course store")
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
