package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/pipeline"
	"github.com/streamhub/backend/internal/repositories"
)

// TweetView is one collapsed timeline row with its like count.
type TweetView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LikeCount int64     `json:"likeCount"`
}

// TimelineAuthor is the tweet author's public profile with the
// viewer-relative ownership flag.
type TimelineAuthor struct {
	models.PublicProfile
	IsOwner bool `json:"isOwner"`
}

// TweetTimeline is a user's tweets, most recently modified first, plus the
// author projection.
type TweetTimeline struct {
	Tweets []TweetView    `json:"tweets"`
	Author TimelineAuthor `json:"author"`
}

// TweetService assembles the tweet timeline read model and owns the tweet
// write path.
type TweetService struct {
	runner Runner
	tweets repositories.TweetRepository
	users  repositories.UserRepository
}

// NewTweetService constructs the tweet timeline view.
func NewTweetService(runner Runner, tweets repositories.TweetRepository, users repositories.UserRepository) *TweetService {
	return &TweetService{runner: runner, tweets: tweets, users: users}
}

// ListTweets returns the owner's tweets with like counts, sorted by last
// modification, alongside the author profile.
func (s *TweetService) ListTweets(ctx context.Context, ownerID, viewerID string) (TweetTimeline, error) {
	ownerID, err := CanonicalID(ownerID)
	if err != nil {
		return TweetTimeline{}, err
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return TweetTimeline{}, wrap("find tweet author", err)
	}

	p := pipeline.New("tweets", "t",
		pipeline.Project{Columns: []string{"t.id", "t.content", "t.created_at", "t.updated_at"}},
		pipeline.Filter{Conds: []pipeline.Cond{pipeline.Eq{Column: "t.owner_id", Value: ownerID}}},
		pipeline.Join{Table: "likes", Alias: "l", On: "t.id", Foreign: "tweet_id"},
		pipeline.GroupCollapse{Aggs: []pipeline.Aggregate{{As: "like_count", CountOf: "l.id"}}},
		pipeline.Sort{Field: "t.updated_at", Descending: true},
		pipeline.Sort{Field: "t.id"},
	)

	timeline := TweetTimeline{
		Author: TimelineAuthor{
			PublicProfile: owner.Public(),
			IsOwner:       IsOwner(viewerID, owner.ID),
		},
	}
	err = s.runner.Query(ctx, p, func(rows pgx.Rows) error {
		for rows.Next() {
			var t TweetView
			if err := rows.Scan(&t.ID, &t.Content, &t.CreatedAt, &t.UpdatedAt, &t.LikeCount); err != nil {
				return err
			}
			timeline.Tweets = append(timeline.Tweets, t)
		}
		return nil
	})
	if err != nil {
		return TweetTimeline{}, wrap("list tweets", err)
	}

	return timeline, nil
}

// CreateTweet posts a tweet for the viewer.
func (s *TweetService) CreateTweet(ctx context.Context, viewerID, content string) (models.Tweet, error) {
	if viewerID == "" {
		return models.Tweet{}, E(KindUnauthorized, "sign in to tweet")
	}
	if strings.TrimSpace(content) == "" {
		return models.Tweet{}, E(KindInvalidInput, "tweet text is required")
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   viewerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return models.Tweet{}, wrap("create tweet", err)
	}
	return tweet, nil
}

// UpdateTweet replaces the text of the viewer's own tweet.
func (s *TweetService) UpdateTweet(ctx context.Context, viewerID, tweetID, content string) (models.Tweet, error) {
	if viewerID == "" {
		return models.Tweet{}, E(KindUnauthorized, "sign in to edit tweets")
	}
	tweetID, err := CanonicalID(tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Tweet{}, E(KindInvalidInput, "tweet text is required")
	}

	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, wrap("find tweet", err)
	}
	if !IsOwner(viewerID, tweet.OwnerID) {
		return models.Tweet{}, E(KindForbidden, "only the author can edit a tweet")
	}

	updated, err := s.tweets.UpdateContent(ctx, tweetID, content)
	if err != nil {
		return models.Tweet{}, wrap("update tweet", err)
	}
	return updated, nil
}

// DeleteTweet removes the viewer's own tweet along with its likes.
func (s *TweetService) DeleteTweet(ctx context.Context, viewerID, tweetID string) error {
	if viewerID == "" {
		return E(KindUnauthorized, "sign in to delete tweets")
	}
	tweetID, err := CanonicalID(tweetID)
	if err != nil {
		return err
	}

	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return wrap("find tweet", err)
	}
	if !IsOwner(viewerID, tweet.OwnerID) {
		return E(KindForbidden, "only the author can delete a tweet")
	}

	if err := s.tweets.Delete(ctx, tweetID); err != nil {
		return wrap("delete tweet", err)
	}
	return nil
}
