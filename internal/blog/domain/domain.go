package domain

import "time"

type GroupID int64

type PostID int64

type CommentID int64

// Group is a named topic posts can be tagged with. Groups are immutable once
// created; there is no edit path.
type Group struct {
	ID          GroupID
	Title       string
	Slug        string
	Description string
}

// GroupRef is the group projection carried on a feed post, denormalized so a
// page render needs no extra lookups.
type GroupRef struct {
	ID    GroupID
	Slug  string
	Title string
}

// Author is the user projection carried on posts and comments.
type Author struct {
	ID       string
	Username string
}

type Post struct {
	ID        PostID
	Text      string
	Author    Author
	Group     *GroupRef
	ImagePath string
	CreatedAt time.Time
}

type Comment struct {
	ID        CommentID
	PostID    PostID
	Author    Author
	Text      string
	CreatedAt time.Time
}

// Follow is a directed edge: follower wants author's posts in their feed.
// At most one edge exists per (follower, author) pair and follower never
// equals author.
type Follow struct {
	FollowerID string
	AuthorID   string
	CreatedAt  time.Time
}

type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterByGroup  FilterMode = "by-group"
	FilterByAuthor FilterMode = "by-author"
	FilterFollowed FilterMode = "by-followed-authors"
)

// Filter selects the posts a feed is assembled from. Exactly one of the
// reference fields is consulted, depending on Mode.
type Filter struct {
	Mode       FilterMode
	GroupID    GroupID
	AuthorID   string
	FollowerID string
}
