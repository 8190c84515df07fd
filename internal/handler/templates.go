package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/service"
)

// TemplatesHandler handles template administration and public site content.
type TemplatesHandler struct {
	templates *service.TemplateService
}

// NewTemplatesHandler creates a TemplatesHandler.
func NewTemplatesHandler(svc *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: svc}
}

// HandleList handles GET /templates requests.
func (h *TemplatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// HandleGet handles GET /templates/{id} requests.
func (h *TemplatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tmpl, err := h.templates.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// HandleCreate handles POST /templates/{id} requests.
func (h *TemplatesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.templates.Create)
}

// HandleUpdate handles PUT /templates/{id} requests.
func (h *TemplatesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.templates.Update)
}

func (h *TemplatesHandler) write(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, kind, body string) error) {
	id := chi.URLParam(r, "id")

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = model.TemplateKindItem
	}
	if kind != model.TemplateKindItem && kind != model.TemplateKindSite {
		writeJSON(w, http.StatusBadRequest, errorResponse("unknown template kind"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	if err := op(r.Context(), id, kind, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateBodyRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrTemplateExists):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		case errors.Is(err, service.ErrTemplateNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleClearCache handles POST /templates/cache/clear requests.
func (h *TemplatesHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ClearCacheResponse{Evicted: h.templates.ClearCache()})
}

// HandleSiteContent handles GET /site-content requests. Repeated id query
// parameters select which site fragments to return.
func (h *TemplatesHandler) HandleSiteContent(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]

	content, err := h.templates.SiteContent(r.Context(), ids)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, content)
}
