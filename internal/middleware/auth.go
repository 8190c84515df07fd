package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/thingbox/thingbox-go/internal/auth"
	"github.com/thingbox/thingbox-go/internal/service"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	adminKey   contextKey = "admin"
)

type adminContext struct {
	session *auth.Session
	adminID int64
}

// SessionAuth returns middleware that resolves the Bearer token to a live
// user session and injects it into the request context.
func SessionAuth(svc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(w, r)
			if !ok {
				return
			}

			sess, err := svc.Authenticate(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth returns middleware that resolves the Bearer token as an admin
// token. Admin standing is re-checked against the store on every request;
// a revoked admin gets 403 and the token is evicted.
func AdminAuth(svc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(w, r)
			if !ok {
				return
			}

			sess, adminID, err := svc.AuthenticateAdmin(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrNotAdmin) {
					writeJSONError(w, http.StatusForbidden, "admin privileges required")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired admin token")
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, adminContext{session: sess, adminID: adminID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the authenticated session from the request context.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*auth.Session)
	return sess, ok
}

// AdminFromContext extracts the admin session and resolved admin id from the
// request context.
func AdminFromContext(ctx context.Context) (*auth.Session, int64, bool) {
	ac, ok := ctx.Value(adminKey).(adminContext)
	if !ok {
		return nil, 0, false
	}
	return ac.session, ac.adminID, true
}

func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
		return "", false
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || token == "" {
		writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
		return "", false
	}
	return token, true
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
