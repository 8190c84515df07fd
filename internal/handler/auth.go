package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/thingbox/thingbox-go/internal/middleware"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/service"
)

// AuthHandler handles the login round trip and session introspection.
type AuthHandler struct {
	auth       *service.AuthService
	appBaseURL string
}

// NewAuthHandler creates an AuthHandler; completed logins redirect back to
// appBaseURL.
func NewAuthHandler(svc *service.AuthService, appBaseURL string) *AuthHandler {
	return &AuthHandler{auth: svc, appBaseURL: appBaseURL}
}

// HandleBegin handles GET /auth requests.
func (h *AuthHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	token, redirectURL := h.auth.Begin(r.Context())
	writeJSON(w, http.StatusOK, model.AuthBeginResponse{Token: token, RedirectURL: redirectURL})
}

// HandleComplete handles GET /auth-complete requests, the provider's
// redirect target. The browser lands back on the app regardless of outcome;
// a failed handshake just means no session exists for the token.
func (h *AuthHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if err := h.auth.Complete(r.Context(), token, code); err != nil {
		slog.Warn("login handshake failed", "error", err)
	}

	http.Redirect(w, r, h.appBaseURL, http.StatusFound)
}

// HandleUser handles GET /user requests.
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	admin, err := h.auth.IsAdmin(r.Context(), sess)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{
		Username: sess.Identity.Username,
		ID:       sess.Identity.UserID,
		Admin:    admin,
	})
}

// HandleAdminToken handles GET /admin-token requests.
func (h *AuthHandler) HandleAdminToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	token, err := h.auth.IssueAdminToken(r.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.AdminTokenResponse{AdminToken: token})
}
