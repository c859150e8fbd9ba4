package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/models"
)

func subscriptionFixtures() (*fakeUsers, *fakeSubscriptions) {
	users := &fakeUsers{users: map[string]models.User{
		ownerID:  {ID: ownerID, Username: "creator", DisplayName: "Creator", CoverURL: "https://cdn.example/c.png"},
		viewerID: {ID: viewerID, Username: "watcher", DisplayName: "Watcher"},
	}}
	subs := &fakeSubscriptions{subs: map[string]models.Subscription{}}
	return users, subs
}

func TestToggleSubscriptionFlipsEdge(t *testing.T) {
	users, subs := subscriptionFixtures()
	svc := NewSubscriptionService(&fakeRunner{}, subs, users)

	first, err := svc.ToggleSubscription(context.Background(), viewerID, ownerID)
	if err != nil {
		t.Fatalf("first toggle returned error: %v", err)
	}
	if !first.Subscribed {
		t.Fatal("first toggle must subscribe")
	}

	second, err := svc.ToggleSubscription(context.Background(), viewerID, ownerID)
	if err != nil {
		t.Fatalf("second toggle returned error: %v", err)
	}
	if second.Subscribed {
		t.Fatal("second toggle must unsubscribe")
	}
	if len(subs.subs) != 0 {
		t.Fatalf("expected edge set restored, got %d edges", len(subs.subs))
	}
}

func TestToggleSubscriptionRequiresViewerAndChannel(t *testing.T) {
	users, subs := subscriptionFixtures()
	svc := NewSubscriptionService(&fakeRunner{}, subs, users)

	if _, err := svc.ToggleSubscription(context.Background(), "", ownerID); KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized without viewer, got %v", err)
	}
	if _, err := svc.ToggleSubscription(context.Background(), viewerID, "00000000-0000-0000-0000-0000000000a9"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found for absent channel, got %v", err)
	}
}

func TestListSubscribersJoinsFarSideProfile(t *testing.T) {
	users, subs := subscriptionFixtures()
	created := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	runner := &fakeRunner{
		rows: [][]any{
			{"00000000-0000-0000-0000-0000000000e1", created,
				viewerID, "watcher", "Watcher", ""},
		},
		total: 1,
	}
	svc := NewSubscriptionService(runner, subs, users)

	list, err := svc.ListSubscribers(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("ListSubscribers returned error: %v", err)
	}
	if list.Count != 1 || len(list.Edges) != 1 {
		t.Fatalf("expected one edge with count 1, got %+v", list)
	}
	if list.Edges[0].User.Username != "watcher" {
		t.Fatalf("expected subscriber profile on the edge, got %+v", list.Edges[0])
	}
}

func TestListSubscriptionsUnknownUser(t *testing.T) {
	users, subs := subscriptionFixtures()
	svc := NewSubscriptionService(&fakeRunner{}, subs, users)

	_, err := svc.ListSubscriptions(context.Background(), "00000000-0000-0000-0000-0000000000a9")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found for absent subscriber, got %v", err)
	}
}

func TestChannelProfileViewerFlag(t *testing.T) {
	users, subs := subscriptionFixtures()
	subs.subs[subKey(viewerID, ownerID)] = models.Subscription{
		ID: "00000000-0000-0000-0000-0000000000e1", SubscriberID: viewerID, ChannelID: ownerID,
	}
	svc := NewSubscriptionService(&fakeRunner{}, subs, users)

	profile, err := svc.ChannelProfileByID(context.Background(), ownerID, viewerID)
	if err != nil {
		t.Fatalf("ChannelProfileByID returned error: %v", err)
	}
	if !profile.IsSubscribed {
		t.Fatal("subscribed viewer must see the flag set")
	}
	if profile.SubscriberCount != 1 {
		t.Fatalf("expected subscriber count 1, got %d", profile.SubscriberCount)
	}
	if profile.CoverURL == "" {
		t.Fatal("expected channel cover on the profile")
	}

	anonymous, err := svc.ChannelProfileByID(context.Background(), ownerID, "")
	if err != nil {
		t.Fatalf("ChannelProfileByID returned error: %v", err)
	}
	if anonymous.IsSubscribed {
		t.Fatal("anonymous viewer must never appear subscribed")
	}
}
