package reportshandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/performance"
	"okr/internal/domain/reports"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
)

type Service interface {
	AssessmentReport(ctx context.Context, tenantID, assessmentID string) (reports.AssessmentReport, error)
	AssessmentPDF(ctx context.Context, tenantID, assessmentID string) ([]byte, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/assessments/{assessmentID}", h.handleAssessmentReport)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/assessments/{assessmentID}/pdf", h.handleAssessmentPDF)
	})
}

func (h *Handler) handleAssessmentReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	report, err := h.Service.AssessmentReport(r.Context(), user.TenantID, chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssessmentPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assessmentID := chi.URLParam(r, "assessmentID")
	data, err := h.Service.AssessmentPDF(r.Context(), user.TenantID, assessmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=assessment-%s.pdf", assessmentID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("write pdf failed", "assessmentId", assessmentID, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if errors.Is(err, performance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "assessment not found", requestID)
		return
	}
	slog.Error("report build failed", "path", r.URL.Path, "requestId", requestID, "err", err)
	api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", requestID)
}
