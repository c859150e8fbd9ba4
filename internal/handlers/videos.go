package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/engagement"
	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/media"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

// maxVideoUpload bounds the multipart form held in memory while the video
// file streams to the staging area.
const maxVideoUpload = 32 << 20

type videoResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	AssetStatus  string    `json:"assetStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Views:        v.Views,
		Published:    v.Published,
		AssetStatus:  v.AssetStatus,
		CreatedAt:    v.CreatedAt,
	}
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// VideoHandler implements video publishing and feed endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Feed     FeedProvider
	Ingestor AssetIngestor
	Storage  BlobStorage
}

// Publish handles POST /api/v1/videos. The video file is staged locally and
// persisted to blob storage in the background; the response carries the
// pending record.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil || h.Ingestor == nil {
		logger.Error("video dependencies unavailable", "hasVideos", h.Videos != nil, "hasIngestor", h.Ingestor != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	if err := r.ParseMultipartForm(maxVideoUpload); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart upload"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	file, header, err := r.FormFile("video")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video file is required"})
		return
	}
	defer file.Close()

	staged, err := media.Stage(file)
	if err != nil {
		logger.Error("stage upload failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     middleware.ViewerID(ctx),
		Title:       title,
		Description: description,
		Duration:    duration,
		Published:   true,
		AssetStatus: models.AssetStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumb.Close()
		if h.Storage != nil {
			key := fmt.Sprintf("thumbnails/%s/%s", video.ID, path.Base(thumbHeader.Filename))
			location, err := h.Storage.Save(ctx, key, thumb)
			if err != nil {
				logger.Warn("thumbnail upload failed", "error", err, "videoId", video.ID)
			} else {
				video.ThumbnailURL = location
			}
		}
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video failed", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to publish video"})
		return
	}

	if err := h.Ingestor.Enqueue(ctx, video.ID, header.Filename, staged); err != nil {
		logger.Error("enqueue asset failed", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "upload queue is full, try again"})
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, toVideoResponse(video))
}

// Feed handles GET /api/v1/videos.
func (h VideoHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	req := engagement.FeedRequest{
		OwnerID:   q.Get("userId"),
		Query:     q.Get("query"),
		SortField: q.Get("sortBy"),
		SortAsc:   strings.EqualFold(q.Get("sortType"), "asc"),
		Page:      page,
		Limit:     limit,
		ViewerID:  middleware.ViewerID(ctx),
	}

	feed, err := h.Feed.ListVideoFeed(ctx, req)
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	switch {
	case feed.NoMatches():
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no videos match the request"})
	case feed.OutOfRange():
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "page is out of range"})
	default:
		respondJSON(ctx, w, http.StatusOK, feed)
	}
}

// Get handles GET /api/v1/videos/{videoID}. Unpublished videos are visible
// only to their owner; playback counts a view.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.Videos.FindByID(ctx, chi.URLParam(r, "videoID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("video lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load video"})
		return
	}

	viewerID := middleware.ViewerID(ctx)
	if !video.Published && video.OwnerID != viewerID {
		// Hidden, not forbidden: existence of an unpublished video is
		// not disclosed.
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
		return
	}

	if viewerID != video.OwnerID {
		if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
			logger.Warn("increment views failed", "error", err, "videoId", video.ID)
		} else {
			video.Views++
		}
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

// Update handles PATCH /api/v1/videos/{videoID}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title must not be empty"})
			return
		}
		video.Title = title
	}
	if req.Description != nil {
		video.Description = strings.TrimSpace(*req.Description)
	}
	video.UpdatedAt = time.Now().UTC()

	if err := h.Videos.Update(ctx, video); err != nil {
		logger.Error("video update failed", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

// Delete handles DELETE /api/v1/videos/{videoID}. Comments and likes on the
// video go with it.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		logging.FromContext(ctx).Error("video delete failed", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to delete video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TogglePublish handles PATCH /api/v1/videos/{videoID}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	video.Published = !video.Published
	if err := h.Videos.SetPublished(ctx, video.ID, video.Published); err != nil {
		logging.FromContext(ctx).Error("toggle publish failed", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

// ownedVideo loads the requested video and enforces that the viewer owns it.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()

	video, err := h.Videos.FindByID(ctx, chi.URLParam(r, "videoID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return models.Video{}, false
		}
		logging.FromContext(ctx).Error("video lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load video"})
		return models.Video{}, false
	}

	if video.OwnerID != middleware.ViewerID(ctx) {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner can modify a video"})
		return models.Video{}, false
	}

	return video, true
}
