package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/models"
)

func commentFixtures() (*fakeVideos, *fakeComments) {
	videos := &fakeVideos{videos: map[string]models.Video{
		videoID: {ID: videoID, OwnerID: ownerID, Published: true},
	}}
	comments := &fakeComments{comments: map[string]models.Comment{
		commentID: {ID: commentID, OwnerID: viewerID, VideoID: videoID, Content: "nice"},
	}}
	return videos, comments
}

func commentRow(id, ownerID, content string, isOwner bool, likeCount int64, liked bool) []any {
	created := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	return []any{
		id, videoID, ownerID, content, created, created,
		ownerID, "author", "Author", "https://cdn.example/a.png",
		isOwner, likeCount, liked,
	}
}

func TestListCommentsCollapsesLikeFanOut(t *testing.T) {
	videos, comments := commentFixtures()
	runner := &fakeRunner{rows: [][]any{
		commentRow(commentID, viewerID, "first", true, 3, true),
		commentRow("00000000-0000-0000-0000-0000000000c2", ownerID, "second", false, 0, false),
	}}
	svc := NewCommentService(runner, comments, videos)

	views, err := svc.ListComments(context.Background(), videoID, 1, 10, viewerID)
	if err != nil {
		t.Fatalf("ListComments returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected one row per comment, got %d", len(views))
	}
	first := views[0]
	if first.LikeCount != 3 || !first.LikedByUser || !first.IsOwner {
		t.Fatalf("expected collapsed flags for viewer-owned liked comment, got %+v", first)
	}
	second := views[1]
	if second.LikeCount != 0 || second.LikedByUser || second.IsOwner {
		t.Fatalf("expected zeroed flags for unliked foreign comment, got %+v", second)
	}
}

func TestListCommentsRequiresExistingVideo(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	_, err := svc.ListComments(context.Background(), "00000000-0000-0000-0000-0000000000b9", 1, 10, viewerID)
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found for absent video, got %v", err)
	}
}

func TestListCommentsRejectsMalformedVideoID(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	_, err := svc.ListComments(context.Background(), "not-a-uuid", 1, 10, viewerID)
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input for malformed id, got %v", err)
	}
}

func TestListCommentsAnonymousViewerBindsNull(t *testing.T) {
	videos, comments := commentFixtures()
	runner := &fakeRunner{}
	svc := NewCommentService(runner, comments, videos)

	if _, err := svc.ListComments(context.Background(), videoID, 1, 10, ""); err != nil {
		t.Fatalf("ListComments returned error: %v", err)
	}
	plan := runner.lastPlan()
	if len(plan.Args) != 3 {
		t.Fatalf("expected video filter plus two viewer binds, got %v", plan.Args)
	}
	if plan.Args[1] != nil || plan.Args[2] != nil {
		t.Fatalf("anonymous viewer must bind NULL for both flags, got %v", plan.Args)
	}
}

func TestAddCommentRequiresViewerAndContent(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	if _, err := svc.AddComment(context.Background(), "", videoID, "hey"); KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized without viewer, got %v", err)
	}
	if _, err := svc.AddComment(context.Background(), viewerID, videoID, "   "); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input for blank content, got %v", err)
	}
}

func TestAddCommentStampsOwnerAndVideo(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	comment, err := svc.AddComment(context.Background(), viewerID, videoID, "great video")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if comment.OwnerID != viewerID || comment.VideoID != videoID {
		t.Fatalf("expected comment bound to viewer and video, got %+v", comment)
	}
	if _, ok := comments.comments[comment.ID]; !ok {
		t.Fatal("expected comment persisted")
	}
}

func TestUpdateCommentForbiddenForNonOwner(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	_, err := svc.UpdateComment(context.Background(), ownerID, commentID, "edited")
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden for non-owner edit, got %v", err)
	}
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	videos, comments := commentFixtures()
	svc := NewCommentService(&fakeRunner{}, comments, videos)

	if err := svc.DeleteComment(context.Background(), ownerID, commentID); KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden for non-owner delete, got %v", err)
	}
	if err := svc.DeleteComment(context.Background(), viewerID, commentID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if _, ok := comments.comments[commentID]; ok {
		t.Fatal("expected comment removed")
	}
}
