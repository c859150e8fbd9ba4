package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamhub/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger        *slog.Logger
	Users         UserStore
	Sessions      SessionManager
	Verifier      middleware.TokenVerifier
	Videos        VideoStore
	Feed          FeedProvider
	Comments      CommentProvider
	Tweets        TweetProvider
	Likes         LikeToggler
	Subscriptions SubscriptionProvider
	Playlists     PlaylistStore
	Stats         StatsProvider
	Storage       BlobStorage
	Ingestor      AssetIngestor
	AuthLimiter   RateLimiter
}

// NewRouter wires all HTTP handlers into a chi router. Viewer resolution
// runs on every request; individual routes opt into RequireViewer.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	if deps.Logger != nil {
		r.Use(middleware.RequestLogger(deps.Logger))
	}
	if deps.Verifier != nil {
		r.Use(middleware.ResolveViewer(deps.Verifier))
	}

	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	users := UserHandler{Users: deps.Users, Storage: deps.Storage, Subscriptions: deps.Subscriptions}
	videos := VideoHandler{Videos: deps.Videos, Feed: deps.Feed, Ingestor: deps.Ingestor, Storage: deps.Storage}
	comments := CommentHandler{Comments: deps.Comments}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{Likes: deps.Likes}
	subs := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	dashboard := DashboardHandler{Stats: deps.Stats, Videos: deps.Videos}

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Post("/refresh", auth.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Post("/logout", auth.Logout)
				r.Post("/change-password", auth.ChangePassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Get("/me", users.Current)
				r.Patch("/me", users.UpdateProfile)
				r.Put("/me/avatar", users.UploadAvatar)
				r.Put("/me/cover", users.UploadCover)
			})
			r.Get("/{userID}/tweets", tweets.Timeline)
			r.Get("/{userID}/subscriptions", subs.SubscribedChannels)
			r.Get("/{userID}/playlists", playlists.ListForUser)
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/{channelID}", users.Channel)
			r.Get("/{channelID}/subscribers", subs.Subscribers)
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videos.ListFeed)
			r.Get("/{videoID}", videos.Get)
			r.Get("/{videoID}/comments", comments.List)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Post("/", videos.Publish)
				r.Patch("/{videoID}", videos.Update)
				r.Delete("/{videoID}", videos.Delete)
				r.Patch("/{videoID}/publish", videos.TogglePublish)
				r.Post("/{videoID}/comments", comments.Add)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(middleware.RequireViewer)
			r.Patch("/{commentID}", comments.Update)
			r.Delete("/{commentID}", comments.Delete)
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Use(middleware.RequireViewer)
			r.Post("/", tweets.Create)
			r.Patch("/{tweetID}", tweets.Update)
			r.Delete("/{tweetID}", tweets.Delete)
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(middleware.RequireViewer)
			r.Get("/videos", likes.LikedVideos)
			r.Post("/videos/{videoID}", likes.ToggleVideo)
			r.Post("/comments/{commentID}", likes.ToggleComment)
			r.Post("/tweets/{tweetID}", likes.ToggleTweet)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(middleware.RequireViewer)
			r.Post("/{channelID}", subs.Toggle)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/{playlistID}", playlists.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistID}", playlists.Update)
				r.Delete("/{playlistID}", playlists.Delete)
				r.Post("/{playlistID}/videos/{videoID}", playlists.AddVideo)
				r.Delete("/{playlistID}/videos/{videoID}", playlists.RemoveVideo)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireViewer)
			r.Get("/stats", dashboard.StatsSummary)
			r.Get("/videos", dashboard.ListVideos)
		})
	})

	return r
}
