package handlers

import (
	"net/http"

	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/middleware"
)

// DashboardHandler serves the owner's channel dashboard.
type DashboardHandler struct {
	Stats  StatsProvider
	Videos VideoStore
}

// StatsSummary handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Stats.ChannelStats(ctx, middleware.ViewerID(ctx))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}

// Videos handles GET /api/v1/dashboard/videos. Unlike the public feed it
// includes unpublished and still-ingesting videos.
func (h DashboardHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Videos.ListByOwner(ctx, middleware.ViewerID(ctx))
	if err != nil {
		logging.FromContext(ctx).Error("dashboard videos failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list videos"})
		return
	}

	out := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, toVideoResponse(v))
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": out})
}
