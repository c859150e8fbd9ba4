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

// CommentView is one collapsed comment-thread row: the comment, its owner's
// public profile, the like count over the fan-out, and the viewer flags.
type CommentView struct {
	ID          string               `json:"id"`
	VideoID     string               `json:"videoId"`
	Content     string               `json:"content"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Owner       models.PublicProfile `json:"owner"`
	LikeCount   int64                `json:"likeCount"`
	LikedByUser bool                 `json:"likedByUser"`
	IsOwner     bool                 `json:"isOwner"`
}

// CommentService assembles the comment thread read model and owns the
// comment write path.
type CommentService struct {
	runner   Runner
	comments repositories.CommentRepository
	videos   repositories.VideoRepository
}

// NewCommentService constructs the comment thread view.
func NewCommentService(runner Runner, comments repositories.CommentRepository, videos repositories.VideoRepository) *CommentService {
	return &CommentService{runner: runner, comments: comments, videos: videos}
}

// ListComments returns one row per comment on the video, in creation order
// with id as tie-break, windowed by page/limit.
func (s *CommentService) ListComments(ctx context.Context, videoID string, page, limit int64, viewerID string) ([]CommentView, error) {
	videoID, err := CanonicalID(videoID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return nil, wrap("find video", err)
	}

	viewer := viewerArg(viewerID)
	p := pipeline.New("comments", "c",
		pipeline.Project{Columns: []string{"c.id", "c.video_id", "c.owner_id", "c.content", "c.created_at", "c.updated_at"}},
		pipeline.Filter{Conds: []pipeline.Cond{pipeline.Eq{Column: "c.video_id", Value: videoID}}},
		pipeline.Join{Table: "users", Alias: "u", On: "c.owner_id", Foreign: "id",
			Columns: []string{"u.id", "u.username", "u.display_name", "u.avatar_url"}},
		pipeline.Join{Table: "likes", Alias: "l", On: "c.id", Foreign: "comment_id"},
		pipeline.GroupCollapse{Aggs: []pipeline.Aggregate{{As: "like_count", CountOf: "l.id"}}},
		pipeline.MemberFlag{As: "liked_by_user", Column: "l.liker_id", Value: viewer},
		pipeline.OwnerFlag{As: "is_owner", Column: "c.owner_id", Value: viewer},
		pipeline.Sort{Field: "c.created_at"},
		pipeline.Sort{Field: "c.id"},
		pipeline.Window{Skip: (page - 1) * limit, Limit: limit},
	)

	var views []CommentView
	err = s.runner.Query(ctx, p, func(rows pgx.Rows) error {
		for rows.Next() {
			var v CommentView
			var ownerID string
			if err := rows.Scan(
				&v.ID, &v.VideoID, &ownerID, &v.Content, &v.CreatedAt, &v.UpdatedAt,
				&v.Owner.ID, &v.Owner.Username, &v.Owner.DisplayName, &v.Owner.AvatarURL,
				&v.IsOwner, &v.LikeCount, &v.LikedByUser,
			); err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("list comments", err)
	}

	return views, nil
}

// AddComment creates a comment on the video for the viewer.
func (s *CommentService) AddComment(ctx context.Context, viewerID, videoID, content string) (models.Comment, error) {
	if viewerID == "" {
		return models.Comment{}, E(KindUnauthorized, "sign in to comment")
	}
	videoID, err := CanonicalID(videoID)
	if err != nil {
		return models.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, E(KindInvalidInput, "comment text is required")
	}

	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return models.Comment{}, wrap("find video", err)
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   viewerID,
		VideoID:   videoID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.Comment{}, wrap("create comment", err)
	}
	return comment, nil
}

// UpdateComment replaces the text of the viewer's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, viewerID, commentID, content string) (models.Comment, error) {
	if viewerID == "" {
		return models.Comment{}, E(KindUnauthorized, "sign in to edit comments")
	}
	commentID, err := CanonicalID(commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, E(KindInvalidInput, "comment text is required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, wrap("find comment", err)
	}
	if !IsOwner(viewerID, comment.OwnerID) {
		return models.Comment{}, E(KindForbidden, "only the author can edit a comment")
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		return models.Comment{}, wrap("update comment", err)
	}
	return updated, nil
}

// DeleteComment removes the viewer's own comment along with its likes.
func (s *CommentService) DeleteComment(ctx context.Context, viewerID, commentID string) error {
	if viewerID == "" {
		return E(KindUnauthorized, "sign in to delete comments")
	}
	commentID, err := CanonicalID(commentID)
	if err != nil {
		return err
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return wrap("find comment", err)
	}
	if !IsOwner(viewerID, comment.OwnerID) {
		return E(KindForbidden, "only the author can delete a comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return wrap("delete comment", err)
	}
	return nil
}
