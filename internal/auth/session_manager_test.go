package auth

import (
	"context"
	"testing"
	"time"

	"github.com/streamhub/backend/internal/models"
	"github.com/streamhub/backend/internal/repositories"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore(ids ...string) *fakeUserStore {
	store := &fakeUserStore{users: map[string]models.User{}}
	for _, id := range ids {
		store.users[id] = models.User{ID: id}
	}
	return store
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByLogin(ctx context.Context, login string) (models.User, error) {
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByRefreshToken(ctx context.Context, token string) (models.User, error) {
	for _, user := range f.users {
		if token != "" && user.RefreshToken == token {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, user models.User) error { return nil }

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return nil
}

func (f *fakeUserStore) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	f.users[userID] = user
	return nil
}

func TestManagerIssueAndVerify(t *testing.T) {
	store := newFakeUserStore("user-1")
	manager := NewManager([]byte("test-secret"), time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}

	if _, err := manager.Verify(tokens.RefreshToken); err == nil {
		t.Fatal("refresh token must not pass access verification")
	}
}

func TestManagerRefreshRotates(t *testing.T) {
	store := newFakeUserStore("user-1")
	manager := NewManager([]byte("test-secret"), time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("superseded token should be rejected, got %v", err)
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager := NewManager([]byte("test-secret"), time.Minute, time.Hour, newFakeUserStore())
	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	store := newFakeUserStore("user-1")
	manager := NewManager([]byte("test-secret"), time.Minute, time.Millisecond, store)

	if _, err := manager.Refresh(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("expected session not found, got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrRefreshTokenExpired {
		t.Fatalf("expected refresh expired, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newFakeUserStore("user-1")
	manager := NewManager([]byte("test-secret"), time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.Revoke(context.Background(), "user-1")

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("revoked session should be rejected, got %v", err)
	}
}
