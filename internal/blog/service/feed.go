package service

import (
	"context"
	"strconv"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/repository"
	"github.com/MarkovDN/pulseblog/internal/common/constants"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
)

// Page is one fixed-size slice of an ordered feed.
type Page struct {
	Posts      []domain.Post
	Number     int
	TotalPages int
	TotalPosts int
	HasNext    bool
	HasPrev    bool
}

type FeedService struct {
	posts   repository.PostRepository
	follows repository.FollowRepository
	log     *logger.Logger
}

func NewFeedService(posts repository.PostRepository, follows repository.FollowRepository, log *logger.Logger) *FeedService {
	return &FeedService{posts: posts, follows: follows, log: log}
}

// Assemble produces the requested page of the feed selected by filter.
// A page number beyond the range clamps to the last valid page; garbage or
// a missing value means page 1; an empty result set is a valid empty page,
// never an error.
func (s *FeedService) Assemble(ctx context.Context, filter domain.Filter, pageParam string) (Page, error) {
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	totalPages := (total + constants.FeedPageSize - 1) / constants.FeedPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	number := ParsePageNumber(pageParam)
	if number > totalPages {
		number = totalPages
	}

	offset := (number - 1) * constants.FeedPageSize
	posts, err := s.posts.List(ctx, filter, constants.FeedPageSize, offset)
	if err != nil {
		return Page{}, err
	}

	metrics.FeedPagesServed.WithLabelValues(string(filter.Mode)).Inc()

	return Page{
		Posts:      posts,
		Number:     number,
		TotalPages: totalPages,
		TotalPosts: total,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}, nil
}

// IsFollowing reports whether the viewer follows the author. An anonymous
// viewer, or the author viewing themselves, is never "following".
func (s *FeedService) IsFollowing(ctx context.Context, viewerID, authorID string) (bool, error) {
	if viewerID == "" || viewerID == authorID {
		return false, nil
	}
	return s.follows.Exists(ctx, viewerID, authorID)
}

// ParsePageNumber maps a raw page query value to a 1-based page number.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
