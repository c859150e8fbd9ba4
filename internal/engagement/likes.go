package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

// ToggleOutcome names the two results of a like toggle.
type ToggleOutcome string

const (
	ToggleAdded   ToggleOutcome = "ADDED"
	ToggleRemoved ToggleOutcome = "REMOVED"
)

// ToggleResult carries the outcome and the like that was created or removed.
type ToggleResult struct {
	Outcome ToggleOutcome `json:"outcome"`
	Like    models.Like   `json:"like"`
}

// LikeService is the toggle engine over the likes relation. Toggling is
// unconditional: there is no separate add or remove, and no error for
// "already liked" or "not liked".
type LikeService struct {
	likes    repositories.LikeRepository
	videos   repositories.VideoRepository
	comments repositories.CommentRepository
	tweets   repositories.TweetRepository
}

// NewLikeService constructs the toggle engine.
func NewLikeService(likes repositories.LikeRepository, videos repositories.VideoRepository, comments repositories.CommentRepository, tweets repositories.TweetRepository) *LikeService {
	return &LikeService{likes: likes, videos: videos, comments: comments, tweets: tweets}
}

// ToggleLike flips the viewer's like on the target. Two consecutive calls
// always return the relation to its prior state.
func (s *LikeService) ToggleLike(ctx context.Context, viewerID string, target models.LikeTarget, targetID string) (ToggleResult, error) {
	if viewerID == "" {
		return ToggleResult{}, E(KindUnauthorized, "sign in to like")
	}
	targetID, err := CanonicalID(targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	like := models.Like{
		ID:        uuid.NewString(),
		LikerID:   viewerID,
		CreatedAt: time.Now().UTC(),
	}
	switch target {
	case models.LikeTargetVideo:
		if _, err := s.videos.FindByID(ctx, targetID); err != nil {
			return ToggleResult{}, wrap("find video", err)
		}
		like.VideoID = targetID
	case models.LikeTargetComment:
		if _, err := s.comments.FindByID(ctx, targetID); err != nil {
			return ToggleResult{}, wrap("find comment", err)
		}
		like.CommentID = targetID
	case models.LikeTargetTweet:
		if _, err := s.tweets.FindByID(ctx, targetID); err != nil {
			return ToggleResult{}, wrap("find tweet", err)
		}
		like.TweetID = targetID
	default:
		return ToggleResult{}, E(KindInvalidInput, "unknown like target")
	}

	result, added, err := s.likes.Toggle(ctx, like)
	if err != nil {
		return ToggleResult{}, wrap("toggle like", err)
	}

	outcome := ToggleRemoved
	if added {
		outcome = ToggleAdded
	}
	return ToggleResult{Outcome: outcome, Like: result}, nil
}

// LikedVideos lists the videos the viewer has liked.
func (s *LikeService) LikedVideos(ctx context.Context, viewerID string) ([]models.Video, error) {
	if viewerID == "" {
		return nil, E(KindUnauthorized, "sign in to list liked videos")
	}
	videos, err := s.likes.ListLikedVideos(ctx, viewerID)
	if err != nil {
		return nil, wrap("list liked videos", err)
	}
	return videos, nil
}
