package models

import "time"

// User represents an account within the StreamHub platform. The password
// field always holds a bcrypt hash and is never serialized outward.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	AvatarURL    string
	CoverURL     string
	Password     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the outward projection of a user joined into feed,
// comment, and subscription results.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar"`
}

// Public returns the owner-safe projection of the user.
func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Video is an uploaded video owned by a single user. OwnerID is set once at
// creation and never reassigned.
type Video struct {
	ID           string
	OwnerID      string
	VideoURL     string
	ThumbnailURL string
	Title        string
	Description  string
	Duration     float64
	Views        int64
	Published    bool
	AssetStatus  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Comment is a user's comment on a video. Owner and video references are
// immutable after creation.
type Comment struct {
	ID        string
	OwnerID   string
	VideoID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short text post owned by a single user.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeTarget names the kind of entity a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like is an edge between a user and exactly one of video, comment, or
// tweet. At most one like exists per (liker, target) pair.
type Like struct {
	ID        string
	LikerID   string
	VideoID   string
	CommentID string
	TweetID   string
	CreatedAt time.Time
}

// Target reports which entity kind the like points at and its id.
func (l Like) Target() (LikeTarget, string) {
	switch {
	case l.VideoID != "":
		return LikeTargetVideo, l.VideoID
	case l.CommentID != "":
		return LikeTargetComment, l.CommentID
	default:
		return LikeTargetTweet, l.TweetID
	}
}

// Subscription is a directed edge from a subscriber to a channel (both
// users). At most one edge exists per (subscriber, channel) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an ordered collection of video references owned by a user.
// Duplicate entries are permitted.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	VideoIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
