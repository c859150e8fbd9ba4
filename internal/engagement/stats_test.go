package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/repositories"
)

func TestChannelStatsCachesWithinTTL(t *testing.T) {
	repo := &fakeStats{stats: repositories.ChannelStats{TotalVideos: 3, TotalViews: 90}}
	svc := NewStatsService(repo, time.Minute)

	for i := 0; i < 3; i++ {
		stats, err := svc.ChannelStats(context.Background(), ownerID)
		if err != nil {
			t.Fatalf("ChannelStats returned error: %v", err)
		}
		if stats.TotalVideos != 3 {
			t.Fatalf("expected cached aggregates, got %+v", stats)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("expected one repository read behind the cache, got %d", repo.calls)
	}
}

func TestChannelStatsInvalidateForcesReread(t *testing.T) {
	repo := &fakeStats{}
	svc := NewStatsService(repo, time.Minute)

	if _, err := svc.ChannelStats(context.Background(), ownerID); err != nil {
		t.Fatalf("ChannelStats returned error: %v", err)
	}
	svc.Invalidate(ownerID)
	if _, err := svc.ChannelStats(context.Background(), ownerID); err != nil {
		t.Fatalf("ChannelStats returned error: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected invalidation to force a second read, got %d", repo.calls)
	}
}

func TestChannelStatsRejectsMalformedID(t *testing.T) {
	svc := NewStatsService(&fakeStats{}, time.Minute)

	_, err := svc.ChannelStats(context.Background(), "nope")
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input for malformed channel id, got %v", err)
	}
}
