package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPlaylistResponse(p models.Playlist) playlistResponse {
	ids := p.VideoIDs
	if ids == nil {
		ids = []string{}
	}
	return playlistResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		VideoIDs:    ids,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     middleware.ViewerID(ctx),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logging.FromContext(ctx).Error("create playlist failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to create playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toPlaylistResponse(playlist))
}

// Get handles GET /api/v1/playlists/{playlistID}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, chi.URLParam(r, "playlistID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return
		}
		logging.FromContext(ctx).Error("playlist lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toPlaylistResponse(playlist))
}

// ListForUser handles GET /api/v1/users/{userID}/playlists.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlists, err := h.Playlists.ListByOwner(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		logging.FromContext(ctx).Error("list playlists failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list playlists"})
		return
	}

	out := make([]playlistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, toPlaylistResponse(p))
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlists": out})
}

// Update handles PATCH /api/v1/playlists/{playlistID}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = playlist.Name
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, name, strings.TrimSpace(req.Description))
	if err != nil {
		logging.FromContext(ctx).Error("playlist update failed", "error", err, "playlistId", playlist.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toPlaylistResponse(updated))
}

// Delete handles DELETE /api/v1/playlists/{playlistID}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		logging.FromContext(ctx).Error("playlist delete failed", "error", err, "playlistId", playlist.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to delete playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddVideo handles POST /api/v1/playlists/{playlistID}/videos/{videoID}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeVideo(w, r, h.Playlists.AddVideo)
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistID}/videos/{videoID}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeVideo(w, r, h.Playlists.RemoveVideo)
}

func (h PlaylistHandler) changeVideo(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, playlistID, videoID string) error) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := op(ctx, playlist.ID, chi.URLParam(r, "videoID")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logging.FromContext(ctx).Error("playlist change failed", "error", err, "playlistId", playlist.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, chi.URLParam(r, "playlistID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return models.Playlist{}, false
		}
		logging.FromContext(ctx).Error("playlist lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load playlist"})
		return models.Playlist{}, false
	}

	if playlist.OwnerID != middleware.ViewerID(ctx) {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner can modify a playlist"})
		return models.Playlist{}, false
	}

	return playlist, true
}
