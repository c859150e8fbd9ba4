package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/streamhub/backend/internal/engagement"
	"github.com/streamhub/backend/internal/logging"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondEngagementError translates a categorized failure into an HTTP
// response. Internal detail never reaches the client.
func respondEngagementError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch engagement.KindOf(err) {
	case engagement.KindInvalidInput:
		status = http.StatusBadRequest
	case engagement.KindNotFound:
		status = http.StatusNotFound
	case engagement.KindUnauthorized:
		status = http.StatusUnauthorized
	case engagement.KindForbidden:
		status = http.StatusForbidden
	case engagement.KindConflict:
		status = http.StatusConflict
	}

	var e *engagement.Error
	if status != http.StatusInternalServerError && errors.As(err, &e) {
		message = e.Msg
	}
	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("request failed", "error", err)
	}

	respondJSON(ctx, w, status, map[string]string{"error": message})
}
