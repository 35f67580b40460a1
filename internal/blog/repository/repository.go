package repository

import (
	"context"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
)

// Every create assigns the record identifier and creation timestamp in the
// store and returns the persisted row.

type GroupRepository interface {
	Create(ctx context.Context, group domain.Group) (domain.Group, error)
	GetBySlug(ctx context.Context, slug string) (domain.Group, error)
}

type PostRepository interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	GetByID(ctx context.Context, id domain.PostID) (domain.Post, error)
	// Update rewrites text, group and image reference. The author never
	// changes after creation.
	Update(ctx context.Context, post domain.Post) error
	Count(ctx context.Context, filter domain.Filter) (int, error)
	// List returns posts matching the filter, newest first.
	List(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	ListByPost(ctx context.Context, postID domain.PostID) ([]domain.Comment, error)
}

type FollowRepository interface {
	// Create is an idempotent upsert of the (follower, author) edge. It
	// rejects a self-follow regardless of the caller.
	Create(ctx context.Context, followerID, authorID string) error
	// Delete removes the edge, failing with ErrFollowNotFound if absent.
	Delete(ctx context.Context, followerID, authorID string) error
	Exists(ctx context.Context, followerID, authorID string) (bool, error)
}
