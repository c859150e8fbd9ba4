package handlers

import (
	"context"
	"io"

	"github.com/streamhub/backend/internal/engagement"
	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the auth and
// profile handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string)
}

// VideoStore captures persistence for video publishing workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AssetIngestor schedules background persistence of uploaded video files.
type AssetIngestor interface {
	Enqueue(ctx context.Context, videoID, filename, stagedPath string) error
}

// BlobStorage persists small images synchronously on the request path.
type BlobStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// FeedProvider serves the published video feed.
type FeedProvider interface {
	ListVideoFeed(ctx context.Context, req engagement.FeedRequest) (engagement.FeedPage, error)
}

// CommentProvider serves the comment thread and its write path.
type CommentProvider interface {
	ListComments(ctx context.Context, videoID string, page, limit int64, viewerID string) ([]engagement.CommentView, error)
	AddComment(ctx context.Context, viewerID, videoID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, viewerID, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, viewerID, commentID string) error
}

// TweetProvider serves the tweet timeline and its write path.
type TweetProvider interface {
	ListTweets(ctx context.Context, ownerID, viewerID string) (engagement.TweetTimeline, error)
	CreateTweet(ctx context.Context, viewerID, content string) (models.Tweet, error)
	UpdateTweet(ctx context.Context, viewerID, tweetID, content string) (models.Tweet, error)
	DeleteTweet(ctx context.Context, viewerID, tweetID string) error
}

// LikeToggler flips likes across target kinds.
type LikeToggler interface {
	ToggleLike(ctx context.Context, viewerID string, target models.LikeTarget, targetID string) (engagement.ToggleResult, error)
	LikedVideos(ctx context.Context, viewerID string) ([]models.Video, error)
}

// SubscriptionProvider serves the subscription graph.
type SubscriptionProvider interface {
	ToggleSubscription(ctx context.Context, viewerID, channelID string) (engagement.SubscriptionToggle, error)
	ListSubscribers(ctx context.Context, channelID string) (engagement.SubscriptionList, error)
	ListSubscriptions(ctx context.Context, subscriberID string) (engagement.SubscriptionList, error)
	ChannelProfileByID(ctx context.Context, channelID, viewerID string) (engagement.ChannelProfile, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsProvider serves channel dashboard aggregates.
type StatsProvider interface {
	ChannelStats(ctx context.Context, channelID string) (repositories.ChannelStats, error)
}
