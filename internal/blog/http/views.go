package http

import (
	"time"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
	userdomain "github.com/MarkovDN/pulseblog/internal/user/domain"
)

type authorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type groupRefView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type postView struct {
	ID        int64         `json:"id"`
	Text      string        `json:"text"`
	Author    authorView    `json:"author"`
	Group     *groupRefView `json:"group,omitempty"`
	ImagePath string        `json:"image,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type pageView struct {
	Posts      []postView `json:"posts"`
	Number     int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	TotalPosts int        `json:"total_posts"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}

type groupView struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type commentView struct {
	ID        int64      `json:"id"`
	Author    authorView `json:"author"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

type indexResponse struct {
	Page pageView `json:"page"`
}

type groupFeedResponse struct {
	Group groupView `json:"group"`
	Page  pageView  `json:"page"`
}

type profileResponse struct {
	Author    authorView `json:"author"`
	Following bool       `json:"following"`
	Page      pageView   `json:"page"`
}

type postDetailResponse struct {
	Post     postView      `json:"post"`
	Comments []commentView `json:"comments"`
}

func newAuthorView(a domain.Author) authorView {
	return authorView{ID: a.ID, Username: a.Username}
}

func newUserView(u userdomain.User) authorView {
	return authorView{ID: string(u.ID), Username: u.Username}
}

func newPostView(p domain.Post) postView {
	view := postView{
		ID:        int64(p.ID),
		Text:      p.Text,
		Author:    newAuthorView(p.Author),
		ImagePath: p.ImagePath,
		CreatedAt: p.CreatedAt,
	}
	if p.Group != nil {
		view.Group = &groupRefView{Slug: p.Group.Slug, Title: p.Group.Title}
	}
	return view
}

func newPageView(page service.Page) pageView {
	posts := make([]postView, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, newPostView(p))
	}
	return pageView{
		Posts:      posts,
		Number:     page.Number,
		TotalPages: page.TotalPages,
		TotalPosts: page.TotalPosts,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
}

func newCommentView(c domain.Comment) commentView {
	return commentView{
		ID:        int64(c.ID),
		Author:    newAuthorView(c.Author),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}
