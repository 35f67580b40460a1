package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	"github.com/MarkovDN/pulseblog/internal/common/constants"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
	"github.com/MarkovDN/pulseblog/internal/pagecache"
)

// index serves the global feed. It is the only cached route: the rendered
// page bytes are kept for the cache TTL, so a fresh post shows up here only
// after expiry or an operator clear.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	key := pagecache.BuildKey(constants.IndexCacheKeyPrefix, r.URL.Query())

	body, hit, err := h.cache.GetOrCompute(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		page, err := h.feed.Assemble(ctx, domain.Filter{Mode: domain.FilterAll}, pageParam(r))
		if err != nil {
			return nil, err
		}
		return json.Marshal(indexResponse{Page: newPageView(page)})
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	commonhttp.WriteRenderedJSON(w, http.StatusOK, body)
}

func (h *Handler) groupFeed(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path[len("/group/"):])
	if len(parts) != 1 {
		h.notFound(w)
		return
	}

	group, err := h.groups.GetBySlug(r.Context(), parts[0])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.feed.Assemble(r.Context(), domain.Filter{
		Mode:    domain.FilterByGroup,
		GroupID: group.ID,
	}, pageParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, groupFeedResponse{
		Group: groupView{Slug: group.Slug, Title: group.Title, Description: group.Description},
		Page:  newPageView(page),
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, username string) {
	user, err := h.users.FindByUsername(r.Context(), username)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	viewerID := ""
	if principal, ok := authguard.FromContext(r.Context()); ok {
		viewerID = principal.UserID
	}

	following, err := h.feed.IsFollowing(r.Context(), viewerID, string(user.ID))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.feed.Assemble(r.Context(), domain.Filter{
		Mode:     domain.FilterByAuthor,
		AuthorID: string(user.ID),
	}, pageParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		Author:    newUserView(user),
		Following: following,
		Page:      newPageView(page),
	})
}

// followedFeed is personal, so it never goes through the page cache.
func (h *Handler) followedFeed(w http.ResponseWriter, r *http.Request) {
	principal, _ := authguard.FromContext(r.Context())

	page, err := h.feed.Assemble(r.Context(), domain.Filter{
		Mode:       domain.FilterFollowed,
		FollowerID: principal.UserID,
	}, pageParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, indexResponse{Page: newPageView(page)})
}

func (h *Handler) postDetail(w http.ResponseWriter, r *http.Request, postID domain.PostID) {
	post, comments, err := h.posts.Detail(r.Context(), postID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, newCommentView(c))
	}

	commonhttp.WriteJSON(w, http.StatusOK, postDetailResponse{
		Post:     newPostView(post),
		Comments: views,
	})
}

func pageParam(r *http.Request) string {
	return r.URL.Query().Get("page")
}
