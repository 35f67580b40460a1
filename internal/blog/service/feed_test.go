package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
)

func feedWithPosts(t *testing.T, total int) *service.FeedService {
	t.Helper()

	posts := &mockPostRepository{
		countFunc: func(ctx context.Context, filter domain.Filter) (int, error) {
			return total, nil
		},
		listFunc: func(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error) {
			var page []domain.Post
			for i := offset; i < total && i < offset+limit; i++ {
				page = append(page, domain.Post{
					ID:        domain.PostID(total - i),
					Text:      fmt.Sprintf("post %d", total-i),
					Author:    domain.Author{ID: "user-1", Username: "alice"},
					CreatedAt: testTime,
				})
			}
			return page, nil
		},
	}

	follows := &mockFollowRepository{
		existsFunc: func(ctx context.Context, followerID, authorID string) (bool, error) {
			return false, nil
		},
	}

	return service.NewFeedService(posts, follows, newTestLogger(t))
}

func TestFeedService_Assemble_SplitsIntoPages(t *testing.T) {
	feed := feedWithPosts(t, 13)

	first, err := feed.Assemble(context.Background(), domain.Filter{Mode: domain.FilterAll}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(first.Posts) != 10 {
		t.Errorf("expected 10 posts on first page, got %d", len(first.Posts))
	}
	if first.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", first.TotalPages)
	}
	if first.TotalPosts != 13 {
		t.Errorf("expected 13 total posts, got %d", first.TotalPosts)
	}
	if !first.HasNext || first.HasPrev {
		t.Errorf("expected HasNext and no HasPrev on page 1, got next=%v prev=%v", first.HasNext, first.HasPrev)
	}
	if first.Posts[0].Text != "post 13" {
		t.Errorf("expected newest post first, got %q", first.Posts[0].Text)
	}

	second, err := feed.Assemble(context.Background(), domain.Filter{Mode: domain.FilterAll}, "2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(second.Posts) != 3 {
		t.Errorf("expected 3 posts on last page, got %d", len(second.Posts))
	}
	if second.HasNext || !second.HasPrev {
		t.Errorf("expected HasPrev and no HasNext on last page, got next=%v prev=%v", second.HasNext, second.HasPrev)
	}
}

func TestFeedService_Assemble_ClampsPageBeyondRange(t *testing.T) {
	feed := feedWithPosts(t, 13)

	page, err := feed.Assemble(context.Background(), domain.Filter{Mode: domain.FilterAll}, "99")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if page.Number != 2 {
		t.Errorf("expected clamp to last page 2, got %d", page.Number)
	}
	if len(page.Posts) != 3 {
		t.Errorf("expected last page content, got %d posts", len(page.Posts))
	}
}

func TestFeedService_Assemble_GarbagePageMeansFirst(t *testing.T) {
	feed := feedWithPosts(t, 13)

	for _, raw := range []string{"abc", "-1", "0", "1.5", ""} {
		page, err := feed.Assemble(context.Background(), domain.Filter{Mode: domain.FilterAll}, raw)
		if err != nil {
			t.Fatalf("page=%q: expected no error, got %v", raw, err)
		}
		if page.Number != 1 {
			t.Errorf("page=%q: expected page 1, got %d", raw, page.Number)
		}
	}
}

func TestFeedService_Assemble_EmptyFeedIsValidPage(t *testing.T) {
	feed := feedWithPosts(t, 0)

	page, err := feed.Assemble(context.Background(), domain.Filter{Mode: domain.FilterAll}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(page.Posts) != 0 {
		t.Errorf("expected empty page, got %d posts", len(page.Posts))
	}
	if page.Number != 1 || page.TotalPages != 1 {
		t.Errorf("expected single empty page, got page %d of %d", page.Number, page.TotalPages)
	}
	if page.HasNext || page.HasPrev {
		t.Error("expected no neighbors on an empty feed")
	}
}

func TestFeedService_IsFollowing(t *testing.T) {
	posts := &mockPostRepository{}
	follows := &mockFollowRepository{
		existsFunc: func(ctx context.Context, followerID, authorID string) (bool, error) {
			return followerID == "user-1" && authorID == "user-2", nil
		},
	}
	feed := service.NewFeedService(posts, follows, newTestLogger(t))

	following, err := feed.IsFollowing(context.Background(), "user-1", "user-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !following {
		t.Error("expected following")
	}

	if anon, _ := feed.IsFollowing(context.Background(), "", "user-2"); anon {
		t.Error("anonymous viewer can never follow")
	}

	if self, _ := feed.IsFollowing(context.Background(), "user-2", "user-2"); self {
		t.Error("author never follows themselves")
	}
}

func TestParsePageNumber(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-3":  1,
		"1":   1,
		"7":   7,
	}
	for raw, want := range cases {
		if got := service.ParsePageNumber(raw); got != want {
			t.Errorf("ParsePageNumber(%q) = %d, want %d", raw, got, want)
		}
	}
}
