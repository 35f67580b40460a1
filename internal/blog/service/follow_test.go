package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MarkovDN/pulseblog/internal/blog/service"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	userdomain "github.com/MarkovDN/pulseblog/internal/user/domain"
)

func knownUsers(users map[string]userdomain.User) *mockUserRepository {
	return &mockUserRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
			user, ok := users[username]
			if !ok {
				return userdomain.User{}, commonerrors.ErrUserNotFound
			}
			return user, nil
		},
	}
}

func TestFollowService_Follow_Success(t *testing.T) {
	users := knownUsers(map[string]userdomain.User{
		"alice": {ID: "user-1", Username: "alice"},
	})

	var gotFollower, gotAuthor string
	follows := &mockFollowRepository{
		createFunc: func(ctx context.Context, followerID, authorID string) error {
			gotFollower, gotAuthor = followerID, authorID
			return nil
		},
	}
	svc := service.NewFollowService(follows, users, newTestLogger(t))

	author, err := svc.Follow(context.Background(), "user-2", "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if author.Username != "alice" {
		t.Errorf("expected resolved author alice, got %s", author.Username)
	}
	if gotFollower != "user-2" || gotAuthor != "user-1" {
		t.Errorf("expected edge user-2 -> user-1, got %s -> %s", gotFollower, gotAuthor)
	}
}

func TestFollowService_Follow_UnknownAuthor(t *testing.T) {
	users := knownUsers(nil)
	follows := &mockFollowRepository{
		createFunc: func(ctx context.Context, followerID, authorID string) error {
			t.Fatal("edge must not be created for an unknown author")
			return nil
		},
	}
	svc := service.NewFollowService(follows, users, newTestLogger(t))

	_, err := svc.Follow(context.Background(), "user-2", "ghost")
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowService_Follow_Self(t *testing.T) {
	users := knownUsers(map[string]userdomain.User{
		"alice": {ID: "user-1", Username: "alice"},
	})
	follows := &mockFollowRepository{
		createFunc: func(ctx context.Context, followerID, authorID string) error {
			if followerID == authorID {
				return commonerrors.ErrSelfFollow
			}
			return nil
		},
	}
	svc := service.NewFollowService(follows, users, newTestLogger(t))

	_, err := svc.Follow(context.Background(), "user-1", "alice")
	if !errors.Is(err, commonerrors.ErrSelfFollow) {
		t.Errorf("expected ErrSelfFollow, got %v", err)
	}
}

func TestFollowService_Unfollow_MissingEdge(t *testing.T) {
	users := knownUsers(map[string]userdomain.User{
		"alice": {ID: "user-1", Username: "alice"},
	})
	follows := &mockFollowRepository{
		deleteFunc: func(ctx context.Context, followerID, authorID string) error {
			return commonerrors.ErrFollowNotFound
		},
	}
	svc := service.NewFollowService(follows, users, newTestLogger(t))

	_, err := svc.Unfollow(context.Background(), "user-2", "alice")
	if !errors.Is(err, commonerrors.ErrFollowNotFound) {
		t.Errorf("expected ErrFollowNotFound, got %v", err)
	}
}

func TestFollowService_Unfollow_Success(t *testing.T) {
	users := knownUsers(map[string]userdomain.User{
		"alice": {ID: "user-1", Username: "alice"},
	})
	deleted := false
	follows := &mockFollowRepository{
		deleteFunc: func(ctx context.Context, followerID, authorID string) error {
			deleted = true
			return nil
		},
	}
	svc := service.NewFollowService(follows, users, newTestLogger(t))

	if _, err := svc.Unfollow(context.Background(), "user-2", "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Error("expected edge deletion")
	}
}
