package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/pipeline"
	"github.com/streamhub/backend/internal/repositories"
)

// SubscriptionEdge is one graph row: the edge plus the public profile of
// the user on its far side.
type SubscriptionEdge struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"createdAt"`
	User      models.PublicProfile `json:"user"`
}

// SubscriptionList is a full (unwindowed) edge list plus its independently
// computed count.
type SubscriptionList struct {
	Edges []SubscriptionEdge `json:"edges"`
	Count int64              `json:"count"`
}

// SubscriptionToggle is the outcome of a subscription toggle.
type SubscriptionToggle struct {
	Subscribed   bool                `json:"subscribed"`
	Subscription models.Subscription `json:"subscription"`
}

// ChannelProfile is a channel page header: public profile, graph counts,
// and the viewer-relative subscription flag.
type ChannelProfile struct {
	models.PublicProfile
	CoverURL        string `json:"cover"`
	SubscriberCount int64  `json:"subscriberCount"`
	SubscribedCount int64  `json:"subscribedToCount"`
	IsSubscribed    bool   `json:"isSubscribed"`
}

// SubscriptionService assembles the subscription graph read models and owns
// the subscription toggle.
type SubscriptionService struct {
	runner Runner
	subs   repositories.SubscriptionRepository
	users  repositories.UserRepository
}

// NewSubscriptionService constructs the subscription graph view.
func NewSubscriptionService(runner Runner, subs repositories.SubscriptionRepository, users repositories.UserRepository) *SubscriptionService {
	return &SubscriptionService{runner: runner, subs: subs, users: users}
}

// ToggleSubscription flips the viewer's edge to the channel.
func (s *SubscriptionService) ToggleSubscription(ctx context.Context, viewerID, channelID string) (SubscriptionToggle, error) {
	if viewerID == "" {
		return SubscriptionToggle{}, E(KindUnauthorized, "sign in to subscribe")
	}
	channelID, err := CanonicalID(channelID)
	if err != nil {
		return SubscriptionToggle{}, err
	}

	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return SubscriptionToggle{}, wrap("find channel", err)
	}

	sub := models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: viewerID,
		ChannelID:    channelID,
		CreatedAt:    time.Now().UTC(),
	}
	result, added, err := s.subs.Toggle(ctx, sub)
	if err != nil {
		return SubscriptionToggle{}, wrap("toggle subscription", err)
	}
	return SubscriptionToggle{Subscribed: added, Subscription: result}, nil
}

// ListSubscribers returns everyone subscribed to the channel plus the edge
// count, as two parallel branches over the same filtered edge set.
func (s *SubscriptionService) ListSubscribers(ctx context.Context, channelID string) (SubscriptionList, error) {
	channelID, err := CanonicalID(channelID)
	if err != nil {
		return SubscriptionList{}, err
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return SubscriptionList{}, wrap("find channel", err)
	}
	return s.listEdges(ctx, "s.channel_id", channelID, "s.subscriber_id")
}

// ListSubscriptions returns every channel the subscriber follows plus the
// edge count.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID string) (SubscriptionList, error) {
	subscriberID, err := CanonicalID(subscriberID)
	if err != nil {
		return SubscriptionList{}, err
	}
	if _, err := s.users.FindByID(ctx, subscriberID); err != nil {
		return SubscriptionList{}, wrap("find subscriber", err)
	}
	return s.listEdges(ctx, "s.subscriber_id", subscriberID, "s.channel_id")
}

func (s *SubscriptionService) listEdges(ctx context.Context, filterColumn, filterValue, farColumn string) (SubscriptionList, error) {
	p := pipeline.New("subscriptions", "s",
		pipeline.Project{Columns: []string{"s.id", "s.created_at"}},
		pipeline.Filter{Conds: []pipeline.Cond{pipeline.Eq{Column: filterColumn, Value: filterValue}}},
		pipeline.Join{Table: "users", Alias: "u", On: farColumn, Foreign: "id",
			Columns: []string{"u.id", "u.username", "u.display_name", "u.avatar_url"}},
		pipeline.Sort{Field: "s.created_at"},
		pipeline.Sort{Field: "s.id"},
	)

	var list SubscriptionList
	count, err := s.runner.QueryWithCount(ctx, p, func(rows pgx.Rows) error {
		for rows.Next() {
			var edge SubscriptionEdge
			if err := rows.Scan(&edge.ID, &edge.CreatedAt,
				&edge.User.ID, &edge.User.Username, &edge.User.DisplayName, &edge.User.AvatarURL); err != nil {
				return err
			}
			list.Edges = append(list.Edges, edge)
		}
		return nil
	})
	if err != nil {
		return SubscriptionList{}, wrap("list subscription edges", err)
	}

	list.Count = count
	return list, nil
}

// ChannelProfileByID resolves a channel page header for the viewer.
func (s *SubscriptionService) ChannelProfileByID(ctx context.Context, channelID, viewerID string) (ChannelProfile, error) {
	channelID, err := CanonicalID(channelID)
	if err != nil {
		return ChannelProfile{}, err
	}

	channel, err := s.users.FindByID(ctx, channelID)
	if err != nil {
		return ChannelProfile{}, wrap("find channel", err)
	}

	subscriberCount, err := s.subs.CountForChannel(ctx, channelID)
	if err != nil {
		return ChannelProfile{}, wrap("count subscribers", err)
	}
	subscribedCount, err := s.subs.CountForSubscriber(ctx, channelID)
	if err != nil {
		return ChannelProfile{}, wrap("count subscribed channels", err)
	}

	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = s.subs.Exists(ctx, viewerID, channelID)
		if err != nil {
			return ChannelProfile{}, wrap("check subscription", err)
		}
	}

	return ChannelProfile{
		PublicProfile:   channel.Public(),
		CoverURL:        channel.CoverURL,
		SubscriberCount: subscriberCount,
		SubscribedCount: subscribedCount,
		IsSubscribed:    isSubscribed,
	}, nil
}
