package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	userdomain "github.com/MarkovDN/pulseblog/internal/user/domain"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

var testTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type mockPostRepository struct {
	createFunc  func(ctx context.Context, post domain.Post) (domain.Post, error)
	getByIDFunc func(ctx context.Context, id domain.PostID) (domain.Post, error)
	updateFunc  func(ctx context.Context, post domain.Post) error
	countFunc   func(ctx context.Context, filter domain.Filter) (int, error)
	listFunc    func(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error)
}

func (m *mockPostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.createFunc(ctx, post)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockPostRepository) Update(ctx context.Context, post domain.Post) error {
	return m.updateFunc(ctx, post)
}

func (m *mockPostRepository) Count(ctx context.Context, filter domain.Filter) (int, error) {
	return m.countFunc(ctx, filter)
}

func (m *mockPostRepository) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error) {
	return m.listFunc(ctx, filter, limit, offset)
}

type mockCommentRepository struct {
	createFunc     func(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	listByPostFunc func(ctx context.Context, postID domain.PostID) ([]domain.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	return m.createFunc(ctx, comment)
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID domain.PostID) ([]domain.Comment, error) {
	return m.listByPostFunc(ctx, postID)
}

type mockGroupRepository struct {
	createFunc    func(ctx context.Context, group domain.Group) (domain.Group, error)
	getBySlugFunc func(ctx context.Context, slug string) (domain.Group, error)
}

func (m *mockGroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	return m.createFunc(ctx, group)
}

func (m *mockGroupRepository) GetBySlug(ctx context.Context, slug string) (domain.Group, error) {
	return m.getBySlugFunc(ctx, slug)
}

type mockFollowRepository struct {
	createFunc func(ctx context.Context, followerID, authorID string) error
	deleteFunc func(ctx context.Context, followerID, authorID string) error
	existsFunc func(ctx context.Context, followerID, authorID string) (bool, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, authorID string) error {
	return m.createFunc(ctx, followerID, authorID)
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, authorID string) error {
	return m.deleteFunc(ctx, followerID, authorID)
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	return m.existsFunc(ctx, followerID, authorID)
}

type mockUserRepository struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

type mockPublisher struct {
	published []domain.Post
	err       error
}

func (m *mockPublisher) PublishPostCreated(ctx context.Context, post domain.Post) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, post)
	return nil
}

func (m *mockPublisher) Close() {}

func unknownGroupRepo() *mockGroupRepository {
	return &mockGroupRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (domain.Group, error) {
			return domain.Group{}, commonerrors.ErrGroupNotFound
		},
	}
}

func newPostService(t *testing.T, posts *mockPostRepository, comments *mockCommentRepository, groups *mockGroupRepository, publisher *mockPublisher) *service.PostService {
	t.Helper()
	if groups == nil {
		groups = unknownGroupRepo()
	}
	if publisher == nil {
		publisher = &mockPublisher{}
	}
	return service.NewPostService(posts, comments, groups, publisher, newTestLogger(t))
}
