package http_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func TestCreatePost_RedirectsToProfile(t *testing.T) {
	env := newTestEnv(t)
	bob := env.store.addUser("user-2", "bob")

	rec := env.postFormAs(bob, "/create/", url.Values{"text": {"my first post"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile/bob/" {
		t.Errorf("expected redirect to /profile/bob/, got %s", loc)
	}

	if len(env.store.posts) != 1 || env.store.posts[0].Text != "my first post" {
		t.Errorf("expected the post persisted, got %+v", env.store.posts)
	}
}

func TestCreatePost_WithGroup(t *testing.T) {
	env := newTestEnv(t)
	bob := env.store.addUser("user-2", "bob")
	env.store.addGroup("cats", "Cats")

	rec := env.postFormAs(bob, "/create/", url.Values{
		"text":  {"tagged post"},
		"group": {"cats"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	post := env.store.posts[0]
	if post.Group == nil || post.Group.Slug != "cats" {
		t.Errorf("expected group cats on post, got %+v", post.Group)
	}
}

func TestCreatePost_EmptyTextIs400(t *testing.T) {
	env := newTestEnv(t)
	bob := env.store.addUser("user-2", "bob")

	rec := env.postFormAs(bob, "/create/", url.Values{"text": {"   "}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(env.store.posts) != 0 {
		t.Error("expected nothing persisted on validation failure")
	}
}

func TestCreatePost_AnonymousRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	req := env.post("/create/")
	if req.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", req.Code)
	}
	loc := req.Header().Get("Location")
	if loc != "/auth/login/?next="+url.QueryEscape("/create/") {
		t.Errorf("expected login redirect with next param, got %s", loc)
	}
}

func TestEditPost_NonAuthorSilentlyRedirects(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")
	post := env.store.addPost(alice, "original text", "")

	rec := env.postFormAs(bob, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {"hijacked"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != fmt.Sprintf("/posts/%d/", post.ID) {
		t.Errorf("expected redirect to detail, got %s", loc)
	}

	stored, _ := env.store.postByID(post.ID)
	if stored.Text != "original text" {
		t.Errorf("expected text untouched, got %q", stored.Text)
	}
}

func TestEditPost_AuthorUpdatesText(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")
	post := env.store.addPost(alice, "original text", "")

	rec := env.postFormAs(alice, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {"edited text"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	stored, _ := env.store.postByID(post.ID)
	if stored.Text != "edited text" {
		t.Errorf("expected edited text, got %q", stored.Text)
	}
}

func TestEditPost_GetPrefillsForm(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")
	post := env.store.addPost(alice, "original text", "")

	rec := env.getAs(alice, fmt.Sprintf("/posts/%d/edit/", post.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !containsAll(body, "original text", "text", "group", "image") {
		t.Errorf("expected prefilled form descriptor, got %s", body)
	}
}

func TestAddComment_RedirectsToDetail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")
	post := env.store.addPost(alice, "discussed", "")

	rec := env.postFormAs(bob, fmt.Sprintf("/posts/%d/comment/", post.ID), url.Values{"text": {"nice one"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != fmt.Sprintf("/posts/%d/", post.ID) {
		t.Errorf("expected redirect to detail, got %s", loc)
	}
	if len(env.store.comments) != 1 || env.store.comments[0].Text != "nice one" {
		t.Errorf("expected comment persisted, got %+v", env.store.comments)
	}
}

func TestAddComment_MissingPostIs404(t *testing.T) {
	env := newTestEnv(t)
	bob := env.store.addUser("user-2", "bob")

	rec := env.postFormAs(bob, "/posts/42/comment/", url.Values{"text": {"into the void"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if len(env.store.comments) != 0 {
		t.Error("expected nothing persisted for a missing post")
	}
}

func TestAddComment_EmptyTextIs400(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")
	post := env.store.addPost(alice, "discussed", "")

	rec := env.postFormAs(bob, fmt.Sprintf("/posts/%d/comment/", post.ID), url.Values{"text": {"  "}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(env.store.comments) != 0 {
		t.Error("expected nothing persisted for empty text")
	}
}

func TestFollow_CreatesEdgeAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")

	rec := env.getAs(bob, "/profile/alice/follow/")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile/alice/" {
		t.Errorf("expected redirect to profile, got %s", loc)
	}
	if !env.store.follows[edgeKey("user-2", "user-1")] {
		t.Error("expected follow edge created")
	}

	// Following again is a no-op, not an error.
	again := env.getAs(bob, "/profile/alice/follow/")
	if again.Code != http.StatusSeeOther {
		t.Errorf("expected idempotent follow, got %d", again.Code)
	}
}

func TestFollow_SelfIsRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("user-1", "alice")

	rec := env.getAs(alice, "/profile/alice/follow/")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for self-follow, got %d", rec.Code)
	}
	if env.store.follows[edgeKey("user-1", "user-1")] {
		t.Error("expected no self edge")
	}
}

func TestUnfollow_RemovesEdge(t *testing.T) {
	env := newTestEnv(t)
	env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")
	env.store.follows[edgeKey("user-2", "user-1")] = true

	rec := env.getAs(bob, "/profile/alice/unfollow/")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if env.store.follows[edgeKey("user-2", "user-1")] {
		t.Error("expected edge removed")
	}
}

func TestUnfollow_MissingEdgeIs404(t *testing.T) {
	env := newTestEnv(t)
	env.store.addUser("user-1", "alice")
	bob := env.store.addUser("user-2", "bob")

	rec := env.getAs(bob, "/profile/alice/unfollow/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/nope/", "/posts/abc/", "/posts/1/unknown/", "/profile/alice/poke/"} {
		rec := env.get(path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("path %s: expected 404, got %d", path, rec.Code)
		}
	}
}
