package app

import (
	"context"
	"log/slog"

	"github.com/streamhub/backend/internal/auth"
	"github.com/streamhub/backend/internal/config"
	"github.com/streamhub/backend/internal/db"
	"github.com/streamhub/backend/internal/engagement"
	"github.com/streamhub/backend/internal/handlers"
	"github.com/streamhub/backend/internal/media"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/pipeline"
	"github.com/streamhub/backend/internal/repositories"
	"github.com/streamhub/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup func drains background workers and must be
// called before the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	stats := repositories.NewPostgresStatsRepository(pool)

	executor := pipeline.NewExecutor(pool)

	sessions := auth.NewManager([]byte(cfg.TokenSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, users)

	deps := handlers.Dependencies{
		Logger:        logger,
		Users:         users,
		Sessions:      sessions,
		Verifier:      sessions,
		Videos:        videos,
		Feed:          engagement.NewFeedService(executor),
		Comments:      engagement.NewCommentService(executor, comments, videos),
		Tweets:        engagement.NewTweetService(executor, tweets, users),
		Likes:         engagement.NewLikeService(likes, videos, comments, tweets),
		Subscriptions: engagement.NewSubscriptionService(executor, subscriptions, users),
		Playlists:     playlists,
		Stats:         engagement.NewStatsService(stats, cfg.StatsCacheTTL),
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 3*cfg.AuthRateWindow),
	}

	cleanup := func(context.Context) error { return nil }

	// Media uploads are optional: without a configured bucket the API still
	// serves everything except avatar, cover, and video asset uploads.
	if cfg.ObjectStore.Bucket == "" {
		logger.Warn("object store bucket not configured, media uploads disabled")
		return deps, cleanup, nil
	}

	blobStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	ingestor := media.NewIngestor(blobStore, videos, media.IngestorConfig{
		QueueSize: cfg.IngestQueueSize,
		Workers:   cfg.IngestWorkers,
	}, logger)

	deps.Storage = blobStore
	deps.Ingestor = ingestor

	return deps, ingestor.Shutdown, nil
}
