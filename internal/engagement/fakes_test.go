package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/pipeline"
	"github.com/streamhub/backend/internal/repositories"
)

// fakeRows walks canned row sets through the pgx.Rows surface so service
// collect funcs run unchanged.
type fakeRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = row[i].(string)
		case *int64:
			*target = row[i].(int64)
		case *float64:
			*target = row[i].(float64)
		case *bool:
			*target = row[i].(bool)
		case *time.Time:
			*target = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

// fakeRunner compiles the pipeline, so stage validation errors surface the
// same way they do through the real executor, then serves canned rows.
type fakeRunner struct {
	rows  [][]any
	total int64
	err   error

	plans []pipeline.Plan
}

func (r *fakeRunner) Query(ctx context.Context, p *pipeline.Pipeline, collect func(rows pgx.Rows) error) error {
	plan, err := p.Compile()
	if err != nil {
		return err
	}
	r.plans = append(r.plans, plan)
	if r.err != nil {
		return r.err
	}
	return collect(&fakeRows{data: r.rows})
}

func (r *fakeRunner) QueryWithCount(ctx context.Context, p *pipeline.Pipeline, collect func(rows pgx.Rows) error) (int64, error) {
	if err := r.Query(ctx, p, collect); err != nil {
		return 0, err
	}
	return r.total, nil
}

func (r *fakeRunner) lastPlan() pipeline.Plan {
	return r.plans[len(r.plans)-1]
}

type fakeUsers struct {
	users map[string]models.User
}

func (f *fakeUsers) Create(ctx context.Context, user models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindByLogin(ctx context.Context, login string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUsers) FindByRefreshToken(ctx context.Context, token string) (models.User, error) {
	for _, user := range f.users {
		if token != "" && user.RefreshToken == token {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, user models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	f.users[userID] = user
	return nil
}

func (f *fakeUsers) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	f.users[userID] = user
	return nil
}

type fakeVideos struct {
	videos map[string]models.Video
}

func (f *fakeVideos) Create(ctx context.Context, video models.Video) error {
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideos) FindByID(ctx context.Context, id string) (models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideos) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	var out []models.Video
	for _, video := range f.videos {
		if video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (f *fakeVideos) Update(ctx context.Context, video models.Video) error {
	if _, ok := f.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideos) SetPublished(ctx context.Context, id string, published bool) error {
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Published = published
	f.videos[id] = video
	return nil
}

func (f *fakeVideos) IncrementViews(ctx context.Context, id string) error {
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	f.videos[id] = video
	return nil
}

func (f *fakeVideos) Delete(ctx context.Context, id string) error {
	if _, ok := f.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideos) MarkAssetReady(ctx context.Context, id, location string) error {
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.VideoURL = location
	video.AssetStatus = models.AssetStatusReady
	f.videos[id] = video
	return nil
}

func (f *fakeVideos) MarkAssetFailed(ctx context.Context, id string) error {
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.AssetStatus = models.AssetStatusFailed
	f.videos[id] = video
	return nil
}

type fakeComments struct {
	comments map[string]models.Comment
}

func (f *fakeComments) Create(ctx context.Context, comment models.Comment) error {
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeComments) FindByID(ctx context.Context, id string) (models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (f *fakeComments) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()
	f.comments[id] = comment
	return comment, nil
}

func (f *fakeComments) Delete(ctx context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

type fakeTweets struct {
	tweets map[string]models.Tweet
}

func (f *fakeTweets) Create(ctx context.Context, tweet models.Tweet) error {
	f.tweets[tweet.ID] = tweet
	return nil
}

func (f *fakeTweets) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	tweet, ok := f.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (f *fakeTweets) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := f.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	tweet.UpdatedAt = time.Now().UTC()
	f.tweets[id] = tweet
	return tweet, nil
}

func (f *fakeTweets) Delete(ctx context.Context, id string) error {
	if _, ok := f.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tweets, id)
	return nil
}

// fakeLikes keys the relation by (liker, target) and flips membership the
// way the database toggle does.
type fakeLikes struct {
	likes map[string]models.Like
}

func likeKey(like models.Like) string {
	target, id := like.Target()
	return like.LikerID + "/" + string(target) + "/" + id
}

func (f *fakeLikes) Toggle(ctx context.Context, like models.Like) (models.Like, bool, error) {
	key := likeKey(like)
	if existing, ok := f.likes[key]; ok {
		delete(f.likes, key)
		return existing, false, nil
	}
	f.likes[key] = like
	return like, true, nil
}

func (f *fakeLikes) ListLikedVideos(ctx context.Context, likerID string) ([]models.Video, error) {
	return nil, nil
}

type fakeSubscriptions struct {
	subs map[string]models.Subscription
}

func subKey(subscriberID, channelID string) string {
	return subscriberID + "/" + channelID
}

func (f *fakeSubscriptions) Toggle(ctx context.Context, sub models.Subscription) (models.Subscription, bool, error) {
	key := subKey(sub.SubscriberID, sub.ChannelID)
	if existing, ok := f.subs[key]; ok {
		delete(f.subs, key)
		return existing, false, nil
	}
	f.subs[key] = sub
	return sub, true, nil
}

func (f *fakeSubscriptions) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	_, ok := f.subs[subKey(subscriberID, channelID)]
	return ok, nil
}

func (f *fakeSubscriptions) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	var n int64
	for _, sub := range f.subs {
		if sub.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptions) CountForSubscriber(ctx context.Context, subscriberID string) (int64, error) {
	var n int64
	for _, sub := range f.subs {
		if sub.SubscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}

type fakeStats struct {
	stats repositories.ChannelStats
	calls int
}

func (f *fakeStats) ChannelStats(ctx context.Context, channelID string) (repositories.ChannelStats, error) {
	f.calls++
	return f.stats, nil
}
