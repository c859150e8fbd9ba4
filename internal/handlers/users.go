package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/middleware"
	"github.com/streamhub/backend/internal/models"
)

// maxImageUpload bounds avatar and cover uploads.
const maxImageUpload = 8 << 20

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar"`
	CoverURL    string `json:"cover"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CoverURL:    u.CoverURL,
	}
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
}

// UserHandler implements profile endpoints for the authenticated user and
// public channel pages.
type UserHandler struct {
	Users         UserStore
	Storage       BlobStorage
	Subscriptions SubscriptionProvider
}

// Current handles GET /api/v1/users/me.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, middleware.ViewerID(ctx))
	if err != nil {
		logging.FromContext(ctx).Error("current user lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PATCH /api/v1/users/me. Only the provided fields
// change.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.Users.FindByID(ctx, middleware.ViewerID(ctx))
	if err != nil {
		logger.Error("profile lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "display name must not be empty"})
			return
		}
		user.DisplayName = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email must not be empty"})
			return
		}
		user.Email = email
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.Users.UpdateProfile(ctx, user); err != nil {
		logger.Error("profile update failed", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toUserResponse(user))
}

// UploadAvatar handles PUT /api/v1/users/me/avatar.
func (h UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "avatars", func(user *models.User, location string) {
		user.AvatarURL = location
	})
}

// UploadCover handles PUT /api/v1/users/me/cover.
func (h UserHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "covers", func(user *models.User, location string) {
		user.CoverURL = location
	})
}

func (h UserHandler) uploadImage(w http.ResponseWriter, r *http.Request, prefix string, assign func(*models.User, string)) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Storage == nil {
		logger.Error("blob storage unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "uploads unavailable"})
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart upload"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
		return
	}
	defer file.Close()

	viewerID := middleware.ViewerID(ctx)
	user, err := h.Users.FindByID(ctx, viewerID)
	if err != nil {
		logger.Error("upload profile lookup failed", "error", err, "userId", viewerID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	key := fmt.Sprintf("%s/%s/%s", prefix, viewerID, path.Base(header.Filename))
	location, err := h.Storage.Save(ctx, key, file)
	if err != nil {
		logger.Error("image upload failed", "error", err, "key", key)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	assign(&user, location)
	user.UpdatedAt = time.Now().UTC()
	if err := h.Users.UpdateProfile(ctx, user); err != nil {
		logger.Error("image profile update failed", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, toUserResponse(user))
}

// Channel handles GET /api/v1/channels/{channelID}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Subscriptions.ChannelProfileByID(ctx, chi.URLParam(r, "channelID"), middleware.ViewerID(ctx))
	if err != nil {
		respondEngagementError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}
