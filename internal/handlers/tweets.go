package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
)

type tweetRequest struct {
	Content string `json:"content"`
}

type tweetResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTweetResponse(t models.Tweet) tweetResponse {
	return tweetResponse{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TweetHandler implements tweet timeline endpoints.
type TweetHandler struct {
	Tweets TweetProvider
}

// Timeline handles GET /api/v1/users/{userID}/tweets.
func (h TweetHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	timeline, err := h.Tweets.ListTweets(ctx, chi.URLParam(r, "userID"), middleware.ViewerID(ctx))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, timeline)
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tweet, err := h.Tweets.CreateTweet(ctx, middleware.ViewerID(ctx), req.Content)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toTweetResponse(tweet))
}

// Update handles PATCH /api/v1/tweets/{tweetID}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tweet, err := h.Tweets.UpdateTweet(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "tweetID"), req.Content)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toTweetResponse(tweet))
}

// Delete handles DELETE /api/v1/tweets/{tweetID}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Tweets.DeleteTweet(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "tweetID")); err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
