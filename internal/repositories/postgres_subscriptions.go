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

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the presence of the (subscriber, channel) edge. The unique
// constraint on the pair turns a racing duplicate insert into a retried
// delete, mirroring the like toggle.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, sub models.Subscription) (models.Subscription, bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var deleted models.Subscription
		err := conn.QueryRow(ctx, `
            DELETE FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
            RETURNING id, subscriber_id, channel_id, created_at
        `, sub.SubscriberID, sub.ChannelID).Scan(&deleted.ID, &deleted.SubscriberID, &deleted.ChannelID, &deleted.CreatedAt)
		if err == nil {
			return deleted, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, false, fmt.Errorf("delete subscription: %w", err)
		}

		var inserted models.Subscription
		err = conn.QueryRow(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
            RETURNING id, subscriber_id, channel_id, created_at
        `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt).Scan(&inserted.ID, &inserted.SubscriberID, &inserted.ChannelID, &inserted.CreatedAt)
		if err == nil {
			return inserted, true, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Subscription{}, false, ErrNotFound
		}
		return models.Subscription{}, false, fmt.Errorf("insert subscription: %w", err)
	}

	return models.Subscription{}, false, fmt.Errorf("toggle subscription: contention retries exhausted")
}

// Exists reports whether the (subscriber, channel) edge is present.
func (r *PostgresSubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)
    `, subscriberID, channelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}

// CountForChannel counts a channel's subscribers.
func (r *PostgresSubscriptionRepository) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountForSubscriber counts the channels a user follows.
func (r *PostgresSubscriptionRepository) CountForSubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query, arg string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var n int64
	if err := conn.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
