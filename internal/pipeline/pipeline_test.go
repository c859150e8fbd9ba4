package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCompileCommentThreadPlan(t *testing.T) {
	p := New("comments", "c",
		Project{Columns: []string{"c.id", "c.owner_id", "c.content", "c.created_at"}},
		Filter{Conds: []Cond{Eq{Column: "c.video_id", Value: "video-1"}}},
		Join{Table: "users", Alias: "u", On: "c.owner_id", Foreign: "id", Columns: []string{"u.id", "u.username"}},
		Join{Table: "likes", Alias: "l", On: "c.id", Foreign: "comment_id"},
		GroupCollapse{Aggs: []Aggregate{{As: "like_count", CountOf: "l.id"}}},
		MemberFlag{As: "liked_by_user", Column: "l.liker_id", Value: "viewer-1"},
		OwnerFlag{As: "is_owner", Column: "c.owner_id", Value: "viewer-1"},
		Sort{Field: "c.created_at"},
		Sort{Field: "c.id"},
		Window{Skip: 10, Limit: 5},
	)

	plan, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := "SELECT c.id, c.owner_id, c.content, c.created_at, u.id, u.username, " +
		"COALESCE(c.owner_id = $3, false) AS is_owner, " +
		"COUNT(l.id) AS like_count, COALESCE(bool_or(l.liker_id = $2), false) AS liked_by_user " +
		"FROM comments c " +
		"LEFT JOIN users u ON u.id = c.owner_id " +
		"LEFT JOIN likes l ON l.comment_id = c.id " +
		"WHERE c.video_id = $1 " +
		"GROUP BY c.id, c.owner_id, c.content, c.created_at, u.id, u.username " +
		"ORDER BY c.created_at ASC, c.id ASC " +
		"OFFSET 10 LIMIT 5"
	if plan.Query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", plan.Query, want)
	}

	wantArgs := []any{"video-1", "viewer-1", "viewer-1"}
	if !reflect.DeepEqual(plan.Args, wantArgs) {
		t.Fatalf("unexpected args: got %v want %v", plan.Args, wantArgs)
	}
}

func TestCompileCountIgnoresWindowAndJoins(t *testing.T) {
	p := New("videos", "v",
		Project{Columns: []string{"v.id", "v.title"}},
		Filter{Conds: []Cond{Eq{Column: "v.published", Value: true}, Eq{Column: "v.owner_id", Value: "owner-1"}}},
		Join{Table: "users", Alias: "u", On: "v.owner_id", Foreign: "id", Columns: []string{"u.username"}},
		Sort{Field: "v.created_at", Descending: true},
		Window{Skip: 40, Limit: 20},
	)

	plan, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := "SELECT COUNT(*) FROM videos v WHERE v.published = $1 AND v.owner_id = $2"
	if plan.CountSQL != want {
		t.Fatalf("unexpected count query: got %s want %s", plan.CountSQL, want)
	}
	if !reflect.DeepEqual(plan.CountArgs, []any{true, "owner-1"}) {
		t.Fatalf("unexpected count args: %v", plan.CountArgs)
	}
	for _, fragment := range []string{"OFFSET", "LIMIT", "JOIN", "ORDER"} {
		if strings.Contains(plan.CountSQL, fragment) {
			t.Fatalf("count query must not contain %s: %s", fragment, plan.CountSQL)
		}
	}
}

func TestCompileSearchCondition(t *testing.T) {
	p := New("videos", "v",
		Project{Columns: []string{"v.id"}},
		Filter{Conds: []Cond{Search{Columns: []string{"v.title", "v.description"}, Query: "gopher"}}},
	)

	plan, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := "SELECT v.id FROM videos v WHERE (v.title ILIKE $1 OR v.description ILIKE $1)"
	if plan.Query != want {
		t.Fatalf("unexpected query: %s", plan.Query)
	}
	if !reflect.DeepEqual(plan.Args, []any{"%gopher%"}) {
		t.Fatalf("unexpected args: %v", plan.Args)
	}
}

func TestSortAllowListRejectsUnknownField(t *testing.T) {
	allowed := map[string]string{"createdAt": "v.created_at", "views": "v.views", "title": "v.title"}

	p := New("videos", "v",
		Project{Columns: []string{"v.id"}},
		Sort{Field: "owner_id", Allowed: allowed},
	)
	if _, err := p.Compile(); !errors.Is(err, ErrBadSortField) {
		t.Fatalf("expected ErrBadSortField, got %v", err)
	}

	p = New("videos", "v",
		Project{Columns: []string{"v.id"}},
		Sort{Field: "views", Descending: true, Allowed: allowed},
	)
	plan, err := p.Compile()
	if err != nil {
		t.Fatalf("compile allowed field: %v", err)
	}
	if !strings.Contains(plan.Query, "ORDER BY v.views DESC") {
		t.Fatalf("expected mapped sort column, got %s", plan.Query)
	}
}

func TestMemberFlagRequiresGroupCollapse(t *testing.T) {
	p := New("comments", "c",
		Project{Columns: []string{"c.id"}},
		MemberFlag{As: "liked_by_user", Column: "l.liker_id", Value: "viewer-1"},
	)
	if _, err := p.Compile(); err == nil {
		t.Fatal("expected error for member flag without group-collapse")
	}
}

func TestWindowRejectsInvalidBounds(t *testing.T) {
	p := New("comments", "c",
		Project{Columns: []string{"c.id"}},
		Window{Skip: -1, Limit: 10},
	)
	if _, err := p.Compile(); !errors.Is(err, ErrBadWindow) {
		t.Fatalf("expected ErrBadWindow, got %v", err)
	}

	p = New("comments", "c",
		Project{Columns: []string{"c.id"}},
		Window{Skip: 0, Limit: 0},
	)
	if _, err := p.Compile(); !errors.Is(err, ErrBadWindow) {
		t.Fatalf("expected ErrBadWindow for zero limit, got %v", err)
	}
}

func TestAnonymousViewerBindsNull(t *testing.T) {
	p := New("comments", "c",
		Project{Columns: []string{"c.id"}},
		Join{Table: "likes", Alias: "l", On: "c.id", Foreign: "comment_id"},
		GroupCollapse{},
		MemberFlag{As: "liked_by_user", Column: "l.liker_id", Value: nil},
	)

	plan, err := p.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(plan.Args) != 1 || plan.Args[0] != nil {
		t.Fatalf("expected single nil arg for anonymous viewer, got %v", plan.Args)
	}
	if !strings.Contains(plan.Query, "COALESCE(bool_or(l.liker_id = $1), false)") {
		t.Fatalf("expected coalesced membership flag, got %s", plan.Query)
	}
}

func TestCompileRequiresProjection(t *testing.T) {
	p := New("videos", "v", Filter{Conds: []Cond{Eq{Column: "v.published", Value: true}}})
	if _, err := p.Compile(); err == nil {
		t.Fatal("expected error when no columns are projected")
	}
}
