package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/MarkovDN/pulseblog/internal/auth/service"
	"github.com/MarkovDN/pulseblog/internal/common/authguard"
	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type loginFormDescriptor struct {
	Fields []string `json:"fields"`
	Next   string   `json:"next,omitempty"`
}

type Handler struct {
	auth           *service.AuthService
	errorHandler   *commonhttp.ErrorHandler
	sessionTTL     time.Duration
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(auth *service.AuthService, sessionTTL, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		auth:           auth,
		errorHandler:   commonhttp.NewErrorHandler(log),
		sessionTTL:     sessionTTL,
		requestTimeout: requestTimeout,
		log:            log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register/", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(h.register)))
	mux.HandleFunc("/auth/login/", commonhttp.WithTimeout(requestTimeout)(h.loginRoute))
	mux.HandleFunc("/auth/logout/", commonhttp.RequireMethod(http.MethodPost)(h.logout))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.Register(r.Context(), creds)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, r, result.AccessToken)
	if h.redirectNext(w, r) {
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, tokenResponse{
		Token:    result.AccessToken,
		Username: result.User.Username,
	})
}

// loginRoute serves the login form descriptor on GET, so redirects from
// guarded routes land on a renderable response, and applies credentials
// on POST.
func (h *Handler) loginRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		commonhttp.WriteJSON(w, http.StatusOK, loginFormDescriptor{
			Fields: []string{"username", "password"},
			Next:   r.URL.Query().Get("next"),
		})
	case http.MethodPost:
		h.login(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setSessionCookie(w, r, result.AccessToken)
	if h.redirectNext(w, r) {
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:    result.AccessToken,
		Username: result.User.Username,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authguard.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	commonhttp.Redirect(w, r, "/")
}

// readCredentials accepts JSON bodies and classic form posts.
func (h *Handler) readCredentials(w http.ResponseWriter, r *http.Request) (service.Credentials, bool) {
	var creds service.Credentials

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			commonhttp.WriteError(w, http.StatusBadRequest, "invalid form")
			return creds, false
		}
		creds.Username = r.PostFormValue("username")
		creds.Password = r.PostFormValue("password")
		return creds, true
	}

	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("auth request invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid json")
		return creds, false
	}

	if fields, err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.WriteError(w, http.StatusInternalServerError, "validation failed")
		return creds, false
	} else if len(fields) > 0 {
		details := make(map[string]any, len(fields))
		for field, message := range fields {
			details[field] = message
		}
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "invalid credentials payload", details, "")
		return creds, false
	}

	creds.Username = req.Username
	creds.Password = req.Password
	return creds, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authguard.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectNext honors the next parameter carried over from a login redirect.
// Only relative paths are accepted, anything else would be an open redirect.
func (h *Handler) redirectNext(w http.ResponseWriter, r *http.Request) bool {
	next := r.URL.Query().Get("next")
	if next == "" {
		next = r.PostFormValue("next")
	}
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		return false
	}
	commonhttp.Redirect(w, r, next)
	return true
}
