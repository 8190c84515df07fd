package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thingbox/thingbox-go/internal/middleware"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/service"
)

// ItemsHandler handles item submission and retrieval.
type ItemsHandler struct {
	content *service.ContentService
}

// NewItemsHandler creates an ItemsHandler.
func NewItemsHandler(svc *service.ContentService) *ItemsHandler {
	return &ItemsHandler{content: svc}
}

// HandleFetch handles GET /items requests: the session identity reads its
// own rendered items, newest first.
func (h *ItemsHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	items, err := h.content.FetchRenderedItems(r.Context(), sess.Identity.Provider, sess.Identity.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// HandleSubmit handles POST /items requests from admin-token holders.
func (h *ItemsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, adminID, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.content.SubmitItem(r.Context(), adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTargetRequired),
			errors.Is(err, service.ErrDataRequired),
			errors.Is(err, service.ErrTemplateRequired),
			errors.Is(err, service.ErrBadCiphertext):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrNoOpenBatch):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
