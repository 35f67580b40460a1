package service

import (
	"context"
	"strings"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/repository"
	"github.com/MarkovDN/pulseblog/internal/common/constants"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/events"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
)

type PostService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	groups    repository.GroupRepository
	publisher events.Publisher
	log       *logger.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
	publisher events.Publisher,
	log *logger.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		comments:  comments,
		groups:    groups,
		publisher: publisher,
		log:       log,
	}
}

type PostInput struct {
	Text      string
	GroupSlug string
	ImagePath string
}

// Create persists a new post for the author. Nothing is written when the
// text fails validation.
func (s *PostService) Create(ctx context.Context, author domain.Author, in PostInput) (domain.Post, error) {
	if err := validatePostText(in.Text); err != nil {
		return domain.Post{}, err
	}

	group, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return domain.Post{}, err
	}

	post, err := s.posts.Create(ctx, domain.Post{
		Text:      in.Text,
		Author:    author,
		Group:     group,
		ImagePath: in.ImagePath,
	})
	if err != nil {
		return domain.Post{}, err
	}

	metrics.PostsCreatedTotal.Inc()

	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		s.log.Warnf("failed to publish post created event post_id=%d: %v", post.ID, err)
	}

	return post, nil
}

// Edit rewrites an existing post. Only the author may edit; anyone else gets
// ErrNotPostAuthor and the record stays untouched.
func (s *PostService) Edit(ctx context.Context, actorID string, postID domain.PostID, in PostInput) (domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}

	if post.Author.ID != actorID {
		return domain.Post{}, commonerrors.ErrNotPostAuthor
	}

	if err := validatePostText(in.Text); err != nil {
		return domain.Post{}, err
	}

	group, err := s.resolveGroup(ctx, in.GroupSlug)
	if err != nil {
		return domain.Post{}, err
	}

	post.Text = in.Text
	post.Group = group
	if in.ImagePath != "" {
		post.ImagePath = in.ImagePath
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return domain.Post{}, err
	}

	metrics.PostsEditedTotal.Inc()

	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID domain.PostID) (domain.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// Detail returns a post together with its comments, oldest first.
func (s *PostService) Detail(ctx context.Context, postID domain.PostID) (domain.Post, []domain.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return domain.Post{}, nil, err
	}

	return post, comments, nil
}

// AddComment binds a new comment to an existing post. A missing post is
// NotFound; empty text is a validation error and persists nothing.
func (s *PostService) AddComment(ctx context.Context, postID domain.PostID, author domain.Author, text string) (domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return domain.Comment{}, err
	}

	if strings.TrimSpace(text) == "" {
		return domain.Comment{}, ErrEmptyCommentText
	}
	if len(text) > constants.MaxCommentLength {
		return domain.Comment{}, ErrCommentTextTooLong
	}

	comment, err := s.comments.Create(ctx, domain.Comment{
		PostID: postID,
		Author: author,
		Text:   text,
	})
	if err != nil {
		return domain.Comment{}, err
	}

	metrics.CommentsCreatedTotal.Inc()

	return comment, nil
}

func (s *PostService) resolveGroup(ctx context.Context, slug string) (*domain.GroupRef, error) {
	if slug == "" {
		return nil, nil
	}

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return &domain.GroupRef{ID: group.ID, Slug: group.Slug, Title: group.Title}, nil
}

func validatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyPostText
	}
	if len(text) > constants.MaxPostTextLength {
		return ErrPostTextTooLong
	}
	return nil
}
