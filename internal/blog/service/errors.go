package service

import (
	"net/http"

	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

var (
	ErrEmptyPostText = commonerrors.NewDomainError(
		"EMPTY_POST_TEXT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"post text cannot be empty",
	)

	ErrPostTextTooLong = commonerrors.NewDomainError(
		"POST_TEXT_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"post text is too long",
	)

	ErrEmptyCommentText = commonerrors.NewDomainError(
		"EMPTY_COMMENT_TEXT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"comment text cannot be empty",
	)

	ErrCommentTextTooLong = commonerrors.NewDomainError(
		"COMMENT_TEXT_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"comment text is too long",
	)
)
