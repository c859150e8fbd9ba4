package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/middleware"
)

// SubscriptionHandler implements subscription graph endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionProvider
}

// Toggle handles POST /api/v1/subscriptions/{channelID}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.Subscriptions.ToggleSubscription(ctx, middleware.ViewerID(ctx), chi.URLParam(r, "channelID"))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"subscribed": result.Subscribed})
}

// Subscribers handles GET /api/v1/channels/{channelID}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.Subscriptions.ListSubscribers(ctx, chi.URLParam(r, "channelID"))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, list)
}

// SubscribedChannels handles GET /api/v1/users/{userID}/subscriptions.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.Subscriptions.ListSubscriptions(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, list)
}
