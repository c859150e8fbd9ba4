package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamhub/backend/internal/db"
	"github.com/streamhub/backend/internal/models"
)

const likeColumns = `id, liker_id, COALESCE(video_id, ''), COALESCE(comment_id, ''), COALESCE(tweet_id, ''), created_at`

var likeTargetColumns = map[models.LikeTarget]string{
	models.LikeTargetVideo:   "video_id",
	models.LikeTargetComment: "comment_id",
	models.LikeTargetTweet:   "tweet_id",
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the presence of the like for (liker, target): delete-probe
// first, then insert. Partial unique indexes on (liker_id, <target>) make a
// racing duplicate insert fail with a uniqueness violation, which is retried
// as a delete, so two likes for one pair can never coexist.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, like models.Like) (models.Like, bool, error) {
	target, targetID := like.Target()
	column, ok := likeTargetColumns[target]
	if !ok || targetID == "" {
		return models.Like{}, false, fmt.Errorf("toggle like: no target reference")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		deleted, found, err := r.deleteLike(ctx, conn, column, like.LikerID, targetID)
		if err != nil {
			return models.Like{}, false, err
		}
		if found {
			return deleted, false, nil
		}

		inserted, err := r.insertLike(ctx, conn, like)
		if err == nil {
			return inserted, true, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost the race against a concurrent toggle; probe again.
			continue
		}
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Like{}, false, ErrNotFound
		}
		return models.Like{}, false, fmt.Errorf("insert like: %w", err)
	}

	return models.Like{}, false, fmt.Errorf("toggle like: contention retries exhausted")
}

func (r *PostgresLikeRepository) deleteLike(ctx context.Context, conn queryRower, column, likerID, targetID string) (models.Like, bool, error) {
	query := fmt.Sprintf(`
        DELETE FROM likes
        WHERE liker_id = $1 AND %s = $2
        RETURNING `+likeColumns, column)

	var like models.Like
	err := conn.QueryRow(ctx, query, likerID, targetID).Scan(
		&like.ID, &like.LikerID, &like.VideoID, &like.CommentID, &like.TweetID, &like.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, false, nil
		}
		return models.Like{}, false, fmt.Errorf("delete like: %w", err)
	}
	return like, true, nil
}

func (r *PostgresLikeRepository) insertLike(ctx context.Context, conn queryRower, like models.Like) (models.Like, error) {
	var inserted models.Like
	err := conn.QueryRow(ctx, `
        INSERT INTO likes (id, liker_id, video_id, comment_id, tweet_id, created_at)
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
        RETURNING `+likeColumns,
		like.ID, like.LikerID, like.VideoID, like.CommentID, like.TweetID, like.CreatedAt,
	).Scan(&inserted.ID, &inserted.LikerID, &inserted.VideoID, &inserted.CommentID, &inserted.TweetID, &inserted.CreatedAt)
	if err != nil {
		return models.Like{}, err
	}
	return inserted, nil
}

// ListLikedVideos returns the videos the user has liked, newest like first.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, likerID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description, v.duration, v.views, v.published, v.asset_status, v.created_at, v.updated_at
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        WHERE l.liker_id = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
    `, likerID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return scanVideos(rows)
}

// queryRower is the slice of the pgx connection the toggle needs.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
