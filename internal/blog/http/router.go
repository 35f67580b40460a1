// Package http exposes the feed and publishing routes. Feeds are plain GETs;
// every mutation answers with a redirect so browser clients never resubmit
// on refresh.
package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/repository"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
	"github.com/MarkovDN/pulseblog/internal/media"
	"github.com/MarkovDN/pulseblog/internal/pagecache"
	userrepo "github.com/MarkovDN/pulseblog/internal/user/repository"
)

type Handler struct {
	feed         *service.FeedService
	posts        *service.PostService
	follows      *service.FollowService
	groups       repository.GroupRepository
	users        userrepo.Repository
	cache        pagecache.Cache
	media        *media.Store
	errorHandler *commonhttp.ErrorHandler
	log          *logger.Logger
}

func NewHandler(
	feed *service.FeedService,
	posts *service.PostService,
	follows *service.FollowService,
	groups repository.GroupRepository,
	users userrepo.Repository,
	cache pagecache.Cache,
	mediaStore *media.Store,
	requestTimeout time.Duration,
	liveHandler http.Handler,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		feed:         feed,
		posts:        posts,
		follows:      follows,
		groups:       groups,
		users:        users,
		cache:        cache,
		media:        mediaStore,
		errorHandler: commonhttp.NewErrorHandler(log),
		log:          log,
	}

	withTimeout := commonhttp.WithTimeout(requestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/", withTimeout(h.root))
	mux.HandleFunc("/group/", commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.groupFeed)))
	mux.HandleFunc("/profile/", withTimeout(h.profileDispatch))
	mux.HandleFunc("/posts/", withTimeout(h.postDispatch))
	mux.HandleFunc("/create/", authguard.RequireAuth(withTimeout(h.create)))
	mux.HandleFunc("/follow/", commonhttp.RequireMethod(http.MethodGet)(authguard.RequireAuth(withTimeout(h.followedFeed))))
	mux.HandleFunc("/internal/cache/clear", commonhttp.RequireMethod(http.MethodPost)(h.clearCache))
	mux.HandleFunc("/internal/groups", commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.createGroup)))
	if liveHandler != nil {
		mux.Handle("/live/", authguard.RequireAuth(liveHandler.ServeHTTP))
	}

	return mux
}

// root serves the global feed on the exact path and answers 404 for every
// route no other pattern claimed.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.index(w, r)
}

// profileDispatch routes /profile/{username}/, /profile/{username}/follow/
// and /profile/{username}/unfollow/.
func (h *Handler) profileDispatch(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/profile/"))
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.profile(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "follow":
		authguard.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			h.follow(w, r, parts[0])
		})(w, r)
	case len(parts) == 2 && parts[1] == "unfollow":
		authguard.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			h.unfollow(w, r, parts[0])
		})(w, r)
	default:
		h.notFound(w)
	}
}

// postDispatch routes /posts/{id}/, /posts/{id}/edit/ and
// /posts/{id}/comment/.
func (h *Handler) postDispatch(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/posts/"))
	if len(parts) == 0 {
		h.notFound(w)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.notFound(w)
		return
	}
	postID := domain.PostID(id)

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.postDetail(w, r, postID)
	case len(parts) == 2 && parts[1] == "edit":
		authguard.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			h.edit(w, r, postID)
		})(w, r)
	case len(parts) == 2 && parts[1] == "comment":
		authguard.RequireAuth(commonhttp.RequireMethod(http.MethodPost)(func(w http.ResponseWriter, r *http.Request) {
			h.addComment(w, r, postID)
		}))(w, r)
	default:
		h.notFound(w)
	}
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.log.Info("page cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notFound(w http.ResponseWriter) {
	commonhttp.WriteError(w, http.StatusNotFound, "page not found")
}

func splitPath(trimmed string) []string {
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
