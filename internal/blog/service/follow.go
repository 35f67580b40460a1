package service

import (
	"context"

	"github.com/MarkovDN/pulseblog/internal/blog/repository"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/observability/metrics"
	userdomain "github.com/MarkovDN/pulseblog/internal/user/domain"
	userrepo "github.com/MarkovDN/pulseblog/internal/user/repository"
)

type FollowService struct {
	follows repository.FollowRepository
	users   userrepo.Repository
	log     *logger.Logger
}

func NewFollowService(follows repository.FollowRepository, users userrepo.Repository, log *logger.Logger) *FollowService {
	return &FollowService{follows: follows, users: users, log: log}
}

// Follow creates the (follower, author) edge if it does not already exist.
// Following twice is a no-op; following yourself is rejected.
func (s *FollowService) Follow(ctx context.Context, followerID, authorUsername string) (userdomain.User, error) {
	author, err := s.users.FindByUsername(ctx, authorUsername)
	if err != nil {
		return userdomain.User{}, err
	}

	if err := s.follows.Create(ctx, followerID, string(author.ID)); err != nil {
		return userdomain.User{}, err
	}

	metrics.FollowsTotal.WithLabelValues("follow").Inc()

	return author, nil
}

// Unfollow removes the edge, failing with FOLLOW_NOT_FOUND if it never
// existed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorUsername string) (userdomain.User, error) {
	author, err := s.users.FindByUsername(ctx, authorUsername)
	if err != nil {
		return userdomain.User{}, err
	}

	if err := s.follows.Delete(ctx, followerID, string(author.ID)); err != nil {
		return userdomain.User{}, err
	}

	metrics.FollowsTotal.WithLabelValues("unfollow").Inc()

	return author, nil
}
