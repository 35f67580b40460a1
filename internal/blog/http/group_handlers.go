package http

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/constants"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var errBadSlug = commonerrors.NewDomainError(
	"INVALID_GROUP_SLUG",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"slug must be lowercase letters, digits and hyphens",
)

type createGroupRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

// createGroup is an operator route. There is no self-serve group creation,
// the catalog is managed out of band like the cache clear endpoint.
func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields, err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.WriteError(w, http.StatusInternalServerError, "validation failed")
		return
	} else if len(fields) > 0 {
		details := make(map[string]any, len(fields))
		for field, message := range fields {
			details[field] = message
		}
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "invalid group payload", details, "")
		return
	}

	if len(req.Slug) > constants.MaxSlugLength || !slugPattern.MatchString(req.Slug) {
		h.errorHandler.HandleError(w, r, errBadSlug)
		return
	}

	group, err := h.groups.Create(r.Context(), domain.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.log.Infof("group created: %s", group.Slug)
	commonhttp.WriteJSON(w, http.StatusCreated, groupView{
		Slug:        group.Slug,
		Title:       group.Title,
		Description: group.Description,
	})
}
