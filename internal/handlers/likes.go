package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
)

// LikeHandler implements like toggle endpoints for all target kinds.
type LikeHandler struct {
	Likes LikeToggler
}

type likeToggleResponse struct {
	Outcome  string `json:"outcome"`
	LikeID   string `json:"likeId"`
	Target   string `json:"target"`
	TargetID string `json:"targetId"`
}

// ToggleVideo handles POST /api/v1/likes/videos/{videoID}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo, chi.URLParam(r, "videoID"))
}

// ToggleComment handles POST /api/v1/likes/comments/{commentID}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment, chi.URLParam(r, "commentID"))
}

// ToggleTweet handles POST /api/v1/likes/tweets/{tweetID}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet, chi.URLParam(r, "tweetID"))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget, targetID string) {
	ctx := r.Context()

	result, err := h.Likes.ToggleLike(ctx, middleware.ViewerID(ctx), target, targetID)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	kind, id := result.Like.Target()
	respondJSON(ctx, w, http.StatusOK, likeToggleResponse{
		Outcome:  string(result.Outcome),
		LikeID:   result.Like.ID,
		Target:   string(kind),
		TargetID: id,
	})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Likes.LikedVideos(ctx, middleware.ViewerID(ctx))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	out := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, toVideoResponse(v))
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": out})
}
