package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/blog/service"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
)

const maxUploadMemory = 10 << 20

var errUnsupportedImage = commonerrors.NewDomainError(
	"UNSUPPORTED_IMAGE",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"unsupported image type",
)

type postFormRequest struct {
	Text  string `json:"text"`
	Group string `json:"group"`
}

type commentFormRequest struct {
	Text string `json:"text"`
}

type postFormDescriptor struct {
	Fields []string `json:"fields"`
	Text   string   `json:"text,omitempty"`
	Group  string   `json:"group,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		commonhttp.WriteJSON(w, http.StatusOK, postFormDescriptor{
			Fields: []string{"text", "group", "image"},
		})
	case http.MethodPost:
		h.createPost(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	principal, _ := authguard.FromContext(r.Context())

	input, err := h.readPostInput(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	author := domain.Author{ID: principal.UserID, Username: principal.Username}
	if _, err := h.posts.Create(r.Context(), author, input); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.Redirect(w, r, "/profile/"+principal.Username+"/")
}

// edit serves the prefilled form on GET and applies the change on POST.
// A non-author lands back on the post detail with nothing changed.
func (h *Handler) edit(w http.ResponseWriter, r *http.Request, postID domain.PostID) {
	principal, _ := authguard.FromContext(r.Context())
	detailPath := "/posts/" + strconv.FormatInt(int64(postID), 10) + "/"

	switch r.Method {
	case http.MethodGet:
		post, err := h.posts.Get(r.Context(), postID)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		if post.Author.ID != principal.UserID {
			commonhttp.Redirect(w, r, detailPath)
			return
		}
		descriptor := postFormDescriptor{
			Fields: []string{"text", "group", "image"},
			Text:   post.Text,
		}
		if post.Group != nil {
			descriptor.Group = post.Group.Slug
		}
		commonhttp.WriteJSON(w, http.StatusOK, descriptor)

	case http.MethodPost:
		input, err := h.readPostInput(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		if _, err := h.posts.Edit(r.Context(), principal.UserID, postID, input); err != nil {
			if errors.Is(err, commonerrors.ErrNotPostAuthor) {
				commonhttp.Redirect(w, r, detailPath)
				return
			}
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.Redirect(w, r, detailPath)

	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request, postID domain.PostID) {
	principal, _ := authguard.FromContext(r.Context())

	text, err := h.readCommentText(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	author := domain.Author{ID: principal.UserID, Username: principal.Username}
	if _, err := h.posts.AddComment(r.Context(), postID, author, text); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.Redirect(w, r, "/posts/"+strconv.FormatInt(int64(postID), 10)+"/")
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request, username string) {
	principal, _ := authguard.FromContext(r.Context())

	if _, err := h.follows.Follow(r.Context(), principal.UserID, username); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.Redirect(w, r, "/profile/"+username+"/")
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request, username string) {
	principal, _ := authguard.FromContext(r.Context())

	if _, err := h.follows.Unfollow(r.Context(), principal.UserID, username); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.Redirect(w, r, "/profile/"+username+"/")
}

// readPostInput accepts multipart form posts with an optional image upload,
// classic urlencoded forms and JSON bodies.
func (h *Handler) readPostInput(r *http.Request) (service.PostInput, error) {
	var input service.PostInput
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return input, commonerrors.NewDomainError(
				"INVALID_FORM", commonerrors.CategoryValidation,
				http.StatusBadRequest, "invalid multipart form",
			)
		}
		input.Text = r.FormValue("text")
		input.GroupSlug = r.FormValue("group")

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return input, errUnsupportedImage.WithCause(err)
		default:
			defer file.Close()
			if h.media == nil {
				return input, errUnsupportedImage
			}
			ref, err := h.media.Save(header.Filename, file)
			if err != nil {
				return input, errUnsupportedImage.WithCause(err)
			}
			input.ImagePath = ref
		}
		return input, nil

	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return input, commonerrors.NewDomainError(
				"INVALID_FORM", commonerrors.CategoryValidation,
				http.StatusBadRequest, "invalid form",
			)
		}
		input.Text = r.PostFormValue("text")
		input.GroupSlug = r.PostFormValue("group")
		return input, nil

	default:
		var req postFormRequest
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			return input, commonerrors.NewDomainError(
				"INVALID_JSON", commonerrors.CategoryValidation,
				http.StatusBadRequest, "invalid json body",
			)
		}
		input.Text = req.Text
		input.GroupSlug = req.Group
		return input, nil
	}
}

func (h *Handler) readCommentText(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return "", commonerrors.NewDomainError(
				"INVALID_FORM", commonerrors.CategoryValidation,
				http.StatusBadRequest, "invalid form",
			)
		}
		return r.PostFormValue("text"), nil
	}

	var req commentFormRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		return "", commonerrors.NewDomainError(
			"INVALID_JSON", commonerrors.CategoryValidation,
			http.StatusBadRequest, "invalid json body",
		)
	}
	return req.Text, nil
}
