package http

import (
	"net/http"

	"github.com/MarkovDN/pulseblog/internal/common/constants"
	"github.com/MarkovDN/pulseblog/internal/common/httpmetrics"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
)

// BuildBaseHandler wraps a router in the common middleware chain.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(httpmetrics.Middleware(handler)))))
}
