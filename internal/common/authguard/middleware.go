package authguard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	commonhttp "github.com/MarkovDN/pulseblog/internal/common/http"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   string
	Username string
}

type contextKey string

const principalKey contextKey = "principal"

const SessionCookieName = "auth_token"

// Middleware resolves a principal from the Authorization header or the
// session cookie and stores it in the context. Requests without a valid
// token pass through anonymous; RequireAuth decides what happens then.
func Middleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := parseToken(tokenString, secretBytes)
			if err != nil {
				log.Warnf("auth failed path=%s: %v", r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards a route: anonymous callers are redirected to the login
// route with the requested path in the next parameter.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			commonhttp.RedirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}

func FromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	principal, ok := val.(Principal)
	return principal, ok
}

// WithPrincipal is a test seam for handlers that read the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func extractToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimPrefix(raw, "Bearer ")
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

func ParseToken(tokenString string, secret []byte) (Principal, error) {
	return parseToken(tokenString, secret)
}

func parseToken(tokenString string, secret []byte) (Principal, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Principal{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["usr"].(string)
	if sub == "" || username == "" {
		return Principal{}, errors.New("missing sub or usr claims")
	}

	return Principal{UserID: sub, Username: username}, nil
}
