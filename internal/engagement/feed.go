// Package engagement joins likes, subscriptions, and ownership across
// collections at read time, computes viewer-relative flags, and exposes the
// composed read models and toggle operations consumed by the request layer.
package engagement

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/pipeline"
)

// Runner executes compiled pipelines. *pipeline.Executor satisfies it; tests
// substitute canned row sets.
type Runner interface {
	Query(ctx context.Context, p *pipeline.Pipeline, collect func(rows pgx.Rows) error) error
	QueryWithCount(ctx context.Context, p *pipeline.Pipeline, collect func(rows pgx.Rows) error) (int64, error)
}

// feedSortFields is the allow-list for caller-chosen feed ordering. Anything
// else is rejected, not substituted.
var feedSortFields = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"title":     "v.title",
}

// DefaultFeedSort is applied when the caller does not choose a field.
const DefaultFeedSort = "createdAt"

// FeedRequest names the filters, ordering, and window of a feed read.
type FeedRequest struct {
	OwnerID   string
	Query     string
	SortField string
	SortAsc   bool
	Page      int64
	Limit     int64
	ViewerID  string
}

// FeedVideo is one feed row with its owner's public profile joined in.
type FeedVideo struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	VideoURL     string               `json:"videoUrl"`
	ThumbnailURL string               `json:"thumbnail"`
	Duration     float64              `json:"duration"`
	Views        int64                `json:"views"`
	CreatedAt    time.Time            `json:"createdAt"`
	Owner        models.PublicProfile `json:"owner"`
}

// FeedPage is a contiguous window of the sorted feed plus the total match
// count, computed independently of the window.
type FeedPage struct {
	Videos []FeedVideo `json:"videos"`
	Total  int64       `json:"total"`
	Page   int64       `json:"page"`
	Limit  int64       `json:"limit"`
}

// NoMatches reports that nothing satisfied the filter at all.
func (p FeedPage) NoMatches() bool { return p.Total == 0 }

// OutOfRange reports that rows matched but the requested window lies beyond
// them.
func (p FeedPage) OutOfRange() bool { return p.Total > 0 && len(p.Videos) == 0 }

// FeedService assembles the video feed read model.
type FeedService struct {
	runner Runner
}

// NewFeedService constructs the feed view over a pipeline runner.
func NewFeedService(runner Runner) *FeedService {
	return &FeedService{runner: runner}
}

// ListVideoFeed returns published videos matching the request, windowed by
// page/limit, alongside the total match count.
func (s *FeedService) ListVideoFeed(ctx context.Context, req FeedRequest) (FeedPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	if req.SortField == "" {
		req.SortField = DefaultFeedSort
	}

	conds := []pipeline.Cond{pipeline.Eq{Column: "v.published", Value: true}}
	if req.OwnerID != "" {
		owner, err := CanonicalID(req.OwnerID)
		if err != nil {
			return FeedPage{}, err
		}
		conds = append(conds, pipeline.Eq{Column: "v.owner_id", Value: owner})
	}
	if req.Query != "" {
		conds = append(conds, pipeline.Search{Columns: []string{"v.title", "v.description"}, Query: req.Query})
	}

	p := pipeline.New("videos", "v",
		pipeline.Project{Columns: []string{
			"v.id", "v.title", "v.description", "v.video_url", "v.thumbnail_url",
			"v.duration", "v.views", "v.created_at",
		}},
		pipeline.Filter{Conds: conds},
		pipeline.Join{Table: "users", Alias: "u", On: "v.owner_id", Foreign: "id",
			Columns: []string{"u.id", "u.username", "u.display_name", "u.avatar_url"}},
		pipeline.Sort{Field: req.SortField, Descending: !req.SortAsc, Allowed: feedSortFields},
		pipeline.Sort{Field: "v.id"},
		pipeline.Window{Skip: (req.Page - 1) * req.Limit, Limit: req.Limit},
	)

	page := FeedPage{Page: req.Page, Limit: req.Limit}
	total, err := s.runner.QueryWithCount(ctx, p, func(rows pgx.Rows) error {
		for rows.Next() {
			var v FeedVideo
			if err := rows.Scan(
				&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
				&v.Duration, &v.Views, &v.CreatedAt,
				&v.Owner.ID, &v.Owner.Username, &v.Owner.DisplayName, &v.Owner.AvatarURL,
			); err != nil {
				return err
			}
			page.Videos = append(page.Videos, v)
		}
		return nil
	})
	if err != nil {
		return FeedPage{}, wrap("list video feed", err)
	}

	page.Total = total
	return page, nil
}
