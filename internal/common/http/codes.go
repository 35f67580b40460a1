package http

const (
	CodeUnknown          = "UNKNOWN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeInvalidForm      = "INVALID_FORM"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInvalidPath      = "INVALID_PATH"
	CodeNotFound         = "NOT_FOUND"
	CodeMissingAuth      = "MISSING_AUTHORIZATION"
	CodeInvalidToken     = "INVALID_TOKEN"
)
