package performancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/audit"
	"okr/internal/domain/performance"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	templates, err := h.Service.ListTemplates(r.Context(), user.TenantID)
	if err != nil {
		writeError(w, r, err, "template_list_failed")
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	tpl, err := h.Service.GetTemplate(r.Context(), user.TenantID, chi.URLParam(r, "templateID"))
	if err != nil {
		writeError(w, r, err, "template_get_failed")
		return
	}
	api.Success(w, tpl, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload performance.Template
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateTemplate(r.Context(), user.TenantID, payload)
	if err != nil {
		writeError(w, r, err, "template_create_failed")
		return
	}
	h.record(r, user, audit.ActionTemplateCreate, "template", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload performance.Template
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	payload.ID = chi.URLParam(r, "templateID")

	before, err := h.Service.GetTemplate(r.Context(), user.TenantID, payload.ID)
	if err != nil {
		writeError(w, r, err, "template_update_failed")
		return
	}
	if err := h.Service.UpdateTemplate(r.Context(), user.TenantID, payload); err != nil {
		writeError(w, r, err, "template_update_failed")
		return
	}
	h.record(r, user, audit.ActionTemplateUpdate, "template", payload.ID, before, payload)
	api.Success(w, map[string]string{"id": payload.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")
	if err := h.Service.DeleteTemplate(r.Context(), user.TenantID, templateID); err != nil {
		writeError(w, r, err, "template_delete_failed")
		return
	}
	h.record(r, user, audit.ActionTemplateDelete, "template", templateID, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type validationResult struct {
	Valid  bool                     `json:"valid"`
	Issues []performance.FieldIssue `json:"issues"`
}

// handleValidateTemplate checks a template without saving it so editors can
// show weight problems as they are typed.
func (h *Handler) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload performance.Template
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	issues := performance.ValidateTemplate(payload)
	if issues == nil {
		issues = []performance.FieldIssue{}
	}
	api.Success(w, validationResult{Valid: len(issues) == 0, Issues: issues}, middleware.GetRequestID(r.Context()))
}
