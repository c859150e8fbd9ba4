package engagement

import (
	"context"
	"testing"

	"github.com/streamhub/backend/internal/models"
)

func likeFixtures() (*LikeService, *fakeLikes) {
	likes := &fakeLikes{likes: map[string]models.Like{}}
	videos := &fakeVideos{videos: map[string]models.Video{
		videoID: {ID: videoID, OwnerID: ownerID, Published: true},
	}}
	comments := &fakeComments{comments: map[string]models.Comment{
		commentID: {ID: commentID, OwnerID: ownerID, VideoID: videoID},
	}}
	tweets := &fakeTweets{tweets: map[string]models.Tweet{
		tweetID: {ID: tweetID, OwnerID: ownerID},
	}}
	return NewLikeService(likes, videos, comments, tweets), likes
}

func TestToggleLikeRoundTrip(t *testing.T) {
	svc, likes := likeFixtures()

	first, err := svc.ToggleLike(context.Background(), viewerID, models.LikeTargetVideo, videoID)
	if err != nil {
		t.Fatalf("first toggle returned error: %v", err)
	}
	if first.Outcome != ToggleAdded {
		t.Fatalf("first toggle must add, got %s", first.Outcome)
	}
	if first.Like.VideoID != videoID || first.Like.LikerID != viewerID {
		t.Fatalf("expected like bound to viewer and video, got %+v", first.Like)
	}

	second, err := svc.ToggleLike(context.Background(), viewerID, models.LikeTargetVideo, videoID)
	if err != nil {
		t.Fatalf("second toggle returned error: %v", err)
	}
	if second.Outcome != ToggleRemoved {
		t.Fatalf("second toggle must remove, got %s", second.Outcome)
	}
	if len(likes.likes) != 0 {
		t.Fatalf("expected relation restored, got %d likes", len(likes.likes))
	}
}

func TestToggleLikeTargetsAreIndependent(t *testing.T) {
	svc, likes := likeFixtures()

	for _, tc := range []struct {
		target models.LikeTarget
		id     string
	}{
		{models.LikeTargetVideo, videoID},
		{models.LikeTargetComment, commentID},
		{models.LikeTargetTweet, tweetID},
	} {
		result, err := svc.ToggleLike(context.Background(), viewerID, tc.target, tc.id)
		if err != nil {
			t.Fatalf("toggle %s returned error: %v", tc.target, err)
		}
		if result.Outcome != ToggleAdded {
			t.Fatalf("toggle %s must add on first flip, got %s", tc.target, result.Outcome)
		}
		target, id := result.Like.Target()
		if target != tc.target || id != tc.id {
			t.Fatalf("like points at (%s, %s), want (%s, %s)", target, id, tc.target, tc.id)
		}
	}
	if len(likes.likes) != 3 {
		t.Fatalf("expected one like per target kind, got %d", len(likes.likes))
	}
}

func TestToggleLikeRequiresViewer(t *testing.T) {
	svc, _ := likeFixtures()

	_, err := svc.ToggleLike(context.Background(), "", models.LikeTargetVideo, videoID)
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized without viewer, got %v", err)
	}
}

func TestToggleLikeAbsentTarget(t *testing.T) {
	svc, _ := likeFixtures()

	for _, target := range []models.LikeTarget{
		models.LikeTargetVideo, models.LikeTargetComment, models.LikeTargetTweet,
	} {
		_, err := svc.ToggleLike(context.Background(), viewerID, target, "00000000-0000-0000-0000-0000000000f9")
		if KindOf(err) != KindNotFound {
			t.Fatalf("expected not found for absent %s, got %v", target, err)
		}
	}
}

func TestToggleLikeUnknownTargetKind(t *testing.T) {
	svc, _ := likeFixtures()

	_, err := svc.ToggleLike(context.Background(), viewerID, models.LikeTarget("playlist"), videoID)
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input for unknown target kind, got %v", err)
	}
}

func TestLikedVideosRequiresViewer(t *testing.T) {
	svc, _ := likeFixtures()

	if _, err := svc.LikedVideos(context.Background(), ""); KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized without viewer, got %v", err)
	}
	if _, err := svc.LikedVideos(context.Background(), viewerID); err != nil {
		t.Fatalf("LikedVideos returned error: %v", err)
	}
}
