package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	bloghttp "github.com/MarkovDN/pulseblog/internal/blog/http"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	"github.com/MarkovDN/pulseblog/internal/common/clock"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/events"
	"github.com/MarkovDN/pulseblog/internal/pagecache"
	userdomain "github.com/MarkovDN/pulseblog/internal/user/domain"
)

// fakeStore backs every repository interface with in-memory state so the
// handler tests exercise real services end to end.
type fakeStore struct {
	mu          sync.Mutex
	users       map[string]userdomain.User
	groups      map[string]domain.Group
	posts       []domain.Post
	comments    []domain.Comment
	follows     map[string]bool
	nextPostID  int64
	nextComment int64
	nextGroupID int64
	now         func() time.Time
}

func newFakeStore(clk clock.Clock) *fakeStore {
	return &fakeStore{
		users:   make(map[string]userdomain.User),
		groups:  make(map[string]domain.Group),
		follows: make(map[string]bool),
		now:     clk.Now,
	}
}

func edgeKey(followerID, authorID string) string {
	return followerID + "|" + authorID
}

func (s *fakeStore) addUser(id, username string) userdomain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := userdomain.User{ID: userdomain.ID(id), Username: username, CreatedAt: s.now()}
	s.users[username] = user
	return user
}

func (s *fakeStore) addGroup(slug, title string) domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGroupID++
	group := domain.Group{ID: domain.GroupID(s.nextGroupID), Slug: slug, Title: title}
	s.groups[slug] = group
	return group
}

func (s *fakeStore) addPost(author userdomain.User, text, groupSlug string) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	post := domain.Post{
		ID:        domain.PostID(s.nextPostID),
		Text:      text,
		Author:    domain.Author{ID: string(author.ID), Username: author.Username},
		CreatedAt: s.now(),
	}
	if groupSlug != "" {
		group := s.groups[groupSlug]
		post.Group = &domain.GroupRef{ID: group.ID, Slug: group.Slug, Title: group.Title}
	}
	s.posts = append(s.posts, post)
	return post
}

func (s *fakeStore) postByID(id domain.PostID) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Post{}, false
}

func (s *fakeStore) matches(p domain.Post, filter domain.Filter) bool {
	switch filter.Mode {
	case domain.FilterByGroup:
		return p.Group != nil && p.Group.ID == filter.GroupID
	case domain.FilterByAuthor:
		return p.Author.ID == filter.AuthorID
	case domain.FilterFollowed:
		return s.follows[edgeKey(filter.FollowerID, p.Author.ID)]
	default:
		return true
	}
}

func (s *fakeStore) matching(filter domain.Filter) []domain.Post {
	var out []domain.Post
	for _, p := range s.posts {
		if s.matches(p, filter) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) Create(ctx context.Context, user userdomain.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[user.Username]; ok {
		return commonerrors.ErrUsernameAlreadyExists
	}
	f.s.users[user.Username] = user
	return nil
}

func (f fakeUsers) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[username]
	if !ok {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	return user, nil
}

func (f fakeUsers) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, user := range f.s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return userdomain.User{}, commonerrors.ErrUserNotFound
}

type fakeGroups struct{ s *fakeStore }

func (f fakeGroups) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.groups[group.Slug]; ok {
		return domain.Group{}, commonerrors.ErrGroupSlugAlreadyExists
	}
	f.s.nextGroupID++
	group.ID = domain.GroupID(f.s.nextGroupID)
	f.s.groups[group.Slug] = group
	return group, nil
}

func (f fakeGroups) GetBySlug(ctx context.Context, slug string) (domain.Group, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	group, ok := f.s.groups[slug]
	if !ok {
		return domain.Group{}, commonerrors.ErrGroupNotFound
	}
	return group, nil
}

type fakePosts struct{ s *fakeStore }

func (f fakePosts) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextPostID++
	post.ID = domain.PostID(f.s.nextPostID)
	post.CreatedAt = f.s.now()
	f.s.posts = append(f.s.posts, post)
	return post, nil
}

func (f fakePosts) GetByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	post, ok := f.s.postByID(id)
	if !ok {
		return domain.Post{}, commonerrors.ErrPostNotFound
	}
	return post, nil
}

func (f fakePosts) Update(ctx context.Context, post domain.Post) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i, p := range f.s.posts {
		if p.ID == post.ID {
			f.s.posts[i] = post
			return nil
		}
	}
	return commonerrors.ErrPostNotFound
}

func (f fakePosts) Count(ctx context.Context, filter domain.Filter) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return len(f.s.matching(filter)), nil
}

func (f fakePosts) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	all := f.s.matching(filter)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type fakeComments struct{ s *fakeStore }

func (f fakeComments) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextComment++
	comment.ID = domain.CommentID(f.s.nextComment)
	comment.CreatedAt = f.s.now()
	f.s.comments = append(f.s.comments, comment)
	return comment, nil
}

func (f fakeComments) ListByPost(ctx context.Context, postID domain.PostID) ([]domain.Comment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range f.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeFollows struct{ s *fakeStore }

func (f fakeFollows) Create(ctx context.Context, followerID, authorID string) error {
	if followerID == authorID {
		return commonerrors.ErrSelfFollow
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.follows[edgeKey(followerID, authorID)] = true
	return nil
}

func (f fakeFollows) Delete(ctx context.Context, followerID, authorID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	key := edgeKey(followerID, authorID)
	if !f.s.follows[key] {
		return commonerrors.ErrFollowNotFound
	}
	delete(f.s.follows, key)
	return nil
}

func (f fakeFollows) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.follows[edgeKey(followerID, authorID)], nil
}

type testEnv struct {
	store   *fakeStore
	handler http.Handler
	cache   *pagecache.MemoryCache
	clock   *clock.MockClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := newFakeStore(mockClock)
	cache := pagecache.NewMemoryCache(context.Background(), 20*time.Second, 0, mockClock, log)
	t.Cleanup(cache.Close)

	posts := fakePosts{store}
	follows := fakeFollows{store}
	groups := fakeGroups{store}
	comments := fakeComments{store}
	users := fakeUsers{store}

	feedService := service.NewFeedService(posts, follows, log)
	postService := service.NewPostService(posts, comments, groups, events.NoopPublisher{}, log)
	followService := service.NewFollowService(follows, users, log)

	handler := bloghttp.NewHandler(
		feedService,
		postService,
		followService,
		groups,
		users,
		cache,
		nil,
		time.Second,
		nil,
		log,
	)

	return &testEnv{store: store, handler: handler, cache: cache, clock: mockClock}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) post(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodPost, path, nil))
}

func (e *testEnv) getAs(user userdomain.User, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return e.do(withUser(req, user))
}

func (e *testEnv) postFormAs(user userdomain.User, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(withUser(req, user))
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func commentFor(postID domain.PostID, authorID, username, text string) domain.Comment {
	return domain.Comment{
		PostID: postID,
		Author: domain.Author{ID: authorID, Username: username},
		Text:   text,
	}
}

func withUser(req *http.Request, user userdomain.User) *http.Request {
	principal := authguard.Principal{UserID: string(user.ID), Username: user.Username}
	return req.WithContext(authguard.WithPrincipal(req.Context(), principal))
}
