package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
)

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCommentResponse(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		VideoID:   c.VideoID,
		OwnerID:   c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CommentHandler implements comment thread endpoints. Validation and
// authorization live in the engagement service; the handler translates
// transport only.
type CommentHandler struct {
	Comments CommentProvider
}

// List handles GET /api/v1/videos/{videoID}/comments.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	views, err := h.Comments.ListComments(ctx, chi.URLParam(r, "videoID"), page, limit, middleware.ViewerID(ctx))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"comments": views})
}

// Add handles POST /api/v1/videos/{videoID}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	comment, err := h.Comments.AddComment(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "videoID"), req.Content)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toCommentResponse(comment))
}

// Update handles PATCH /api/v1/comments/{commentID}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	comment, err := h.Comments.UpdateComment(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toCommentResponse(comment))
}

// Delete handles DELETE /api/v1/comments/{commentID}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Comments.DeleteComment(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "commentID")); err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
