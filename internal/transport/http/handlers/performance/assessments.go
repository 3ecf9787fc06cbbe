package performancehandler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/audit"
	"okr/internal/domain/notifications"
	"okr/internal/domain/performance"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type assessmentRequest struct {
	Name           string   `json:"name" validate:"required"`
	TemplateID     string   `json:"templateId" validate:"required"`
	PeriodStart    string   `json:"periodStart"`
	PeriodEnd      string   `json:"periodEnd"`
	Deadline       string   `json:"deadline"`
	BossMode       string   `json:"bossMode" validate:"omitempty,oneof=full simplified traditional"`
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1"`
	Draft          bool     `json:"draft"`
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v := shared.NewValidator()
	v.Enum("status", status, []string{performance.AssessmentStatusDraft, performance.AssessmentStatusActive, performance.AssessmentStatusClosed}, "must be draft, active or closed")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assessments, err := h.Service.ListAssessments(r.Context(), user.TenantID, strings.ToLower(status))
	if err != nil {
		writeError(w, r, err, "assessment_list_failed")
		return
	}
	api.Success(w, assessments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assessment, err := h.Service.GetAssessment(r.Context(), user.TenantID, chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, r, err, "assessment_get_failed")
		return
	}
	api.Success(w, assessment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	var payload assessmentRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	v.Struct(payload)
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	deadline, _ := v.Deadline("deadline", payload.Deadline)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if v.Reject(w, requestID) {
		return
	}

	input := performance.NewAssessment{
		Name:           payload.Name,
		TemplateID:     payload.TemplateID,
		PeriodStart:    start,
		PeriodEnd:      end,
		Deadline:       deadline,
		BossMode:       performance.BossMode(payload.BossMode),
		ParticipantIDs: payload.ParticipantIDs,
		Draft:          payload.Draft,
	}
	id, err := h.Service.CreateAssessment(r.Context(), user.TenantID, input)
	if err != nil {
		writeError(w, r, err, "assessment_create_failed")
		return
	}
	h.record(r, user, audit.ActionAssessmentCreate, "assessment", id, nil, payload)
	if !payload.Draft {
		h.notifyParticipants(r.Context(), user.TenantID, id, payload.Name, payload.ParticipantIDs, notifications.TypeAssessmentAssigned)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleActivateAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")
	if err := h.Service.ActivateAssessment(r.Context(), user.TenantID, assessmentID); err != nil {
		writeError(w, r, err, "assessment_activate_failed")
		return
	}
	h.record(r, user, audit.ActionAssessmentActivate, "assessment", assessmentID, nil, nil)
	if assessment, err := h.Service.GetAssessment(r.Context(), user.TenantID, assessmentID); err == nil {
		h.notifyParticipants(r.Context(), user.TenantID, assessmentID, assessment.Name, assessment.ParticipantIDs, notifications.TypeAssessmentAssigned)
	}
	api.Success(w, map[string]string{"status": performance.AssessmentStatusActive}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCloseAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")
	if err := h.Service.CloseAssessment(r.Context(), user.TenantID, assessmentID); err != nil {
		writeError(w, r, err, "assessment_close_failed")
		return
	}
	h.record(r, user, audit.ActionAssessmentClose, "assessment", assessmentID, nil, nil)
	h.invalidateReports(r.Context(), user.TenantID, assessmentID)
	if assessment, err := h.Service.GetAssessment(r.Context(), user.TenantID, assessmentID); err == nil {
		h.notifyParticipants(r.Context(), user.TenantID, assessmentID, assessment.Name, assessment.ParticipantIDs, notifications.TypeAssessmentClosed)
	}
	api.Success(w, map[string]string{"status": performance.AssessmentStatusClosed}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyParticipants(ctx context.Context, tenantID, assessmentID, name string, participantIDs []string, kind string) {
	title, body := "Assessment assigned", fmt.Sprintf("You are part of %q. Complete your self evaluation before the deadline.", name)
	if kind == notifications.TypeAssessmentClosed {
		title, body = "Assessment closed", fmt.Sprintf("%q is closed. Final scores are available.", name)
	}
	for _, participantID := range participantIDs {
		h.notify(ctx, notifications.Message{
			TenantID:  tenantID,
			UserID:    participantID,
			Type:      kind,
			Title:     title,
			Body:      body,
			DedupeKey: kind + ":" + assessmentID,
		})
	}
}
