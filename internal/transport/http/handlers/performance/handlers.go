package performancehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/audit"
	"okr/internal/domain/auth"
	"okr/internal/domain/notifications"
	"okr/internal/domain/performance"
	"okr/internal/domain/scoring"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Service interface {
	ListTemplates(ctx context.Context, tenantID string) ([]performance.Template, error)
	GetTemplate(ctx context.Context, tenantID, templateID string) (performance.Template, error)
	CreateTemplate(ctx context.Context, tenantID string, tpl performance.Template) (string, error)
	UpdateTemplate(ctx context.Context, tenantID string, tpl performance.Template) error
	DeleteTemplate(ctx context.Context, tenantID, templateID string) error

	ListAssessments(ctx context.Context, tenantID, status string) ([]performance.Assessment, error)
	GetAssessment(ctx context.Context, tenantID, assessmentID string) (performance.Assessment, error)
	CreateAssessment(ctx context.Context, tenantID string, input performance.NewAssessment) (string, error)
	ActivateAssessment(ctx context.Context, tenantID, assessmentID string) error
	CloseAssessment(ctx context.Context, tenantID, assessmentID string) error

	SaveDraft(ctx context.Context, actor performance.Actor, input performance.EvaluationInput) (performance.EvaluationRecord, error)
	Submit(ctx context.Context, actor performance.Actor, input performance.EvaluationInput) (performance.EvaluationRecord, error)
	SubmitBossSimplified(ctx context.Context, actor performance.Actor, input performance.BossStarsInput) (performance.EvaluationRecord, error)
	GetRecords(ctx context.Context, actor performance.Actor, assessmentID, evaluateeID string) ([]performance.EvaluationRecord, error)
	Compare(ctx context.Context, actor performance.Actor, assessmentID, evaluateeID string, base, reference scoring.EvaluatorType) (scoring.Comparison, error)
	FinalScore(ctx context.Context, actor performance.Actor, assessmentID, evaluateeID string) (performance.FinalScore, error)
	FinalScores(ctx context.Context, tenantID, assessmentID string) ([]performance.FinalScore, error)
	ListTasks(ctx context.Context, actor performance.Actor) ([]performance.ReviewTask, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notifications.Message)
}

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// ReportCache drops cached reports for an assessment whose scores changed.
type ReportCache interface {
	Invalidate(ctx context.Context, tenantID, assessmentID string)
}

type SubmissionRecorder interface {
	EvaluationSubmitted(evaluator string)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Notify  Notifier
	Audit   Auditor
	Reports ReportCache
	Metrics SubmissionRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore, notify Notifier, auditSvc Auditor, reports ReportCache, metrics SubmissionRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Reports: reports, Metrics: metrics}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTemplatesRead, h.Perms)).Get("/", h.handleListTemplates)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Post("/", h.handleCreateTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Post("/validate-weights", h.handleValidateTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesRead, h.Perms)).Get("/{templateID}", h.handleGetTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Put("/{templateID}", h.handleUpdateTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Delete("/{templateID}", h.handleDeleteTemplate)
	})

	r.Route("/assessments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAssessmentsRead, h.Perms)).Get("/", h.handleListAssessments)
		r.With(middleware.RequirePermission(auth.PermAssessmentsWrite, h.Perms)).Post("/", h.handleCreateAssessment)
		r.Route("/{assessmentID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermAssessmentsRead, h.Perms)).Get("/", h.handleGetAssessment)
			r.With(middleware.RequirePermission(auth.PermAssessmentsWrite, h.Perms)).Post("/activate", h.handleActivateAssessment)
			r.With(middleware.RequirePermission(auth.PermAssessmentsWrite, h.Perms)).Post("/close", h.handleCloseAssessment)

			r.With(middleware.RequirePermission(auth.PermAssessmentsRead, h.Perms)).Get("/evaluations/{employeeID}", h.handleGetRecords)
			r.With(middleware.RequireUser).Put("/evaluations/{employeeID}/{evaluator}/draft", h.handleSaveDraft)
			r.With(middleware.RequireUser).Post("/evaluations/{employeeID}/{evaluator}/submit", h.handleSubmit)
			r.With(middleware.RequirePermission(auth.PermEvaluateBoss, h.Perms)).Post("/evaluations/{employeeID}/boss/simplified", h.handleSubmitBossSimplified)

			r.With(middleware.RequirePermission(auth.PermAssessmentsRead, h.Perms)).Get("/comparison/{employeeID}", h.handleCompare)
			r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/final-scores", h.handleFinalScores)
			r.With(middleware.RequirePermission(auth.PermAssessmentsRead, h.Perms)).Get("/final-scores/{employeeID}", h.handleFinalScore)
		})
	})

	r.With(middleware.RequireUser).Get("/tasks", h.handleListTasks)
}

func actorOf(user auth.UserContext) performance.Actor {
	return performance.Actor{UserID: user.UserID, TenantID: user.TenantID, Role: user.RoleName}
}

// evaluatorPermission is the permission needed to write an evaluation of the
// given type.
func evaluatorPermission(evaluator scoring.EvaluatorType) string {
	switch evaluator {
	case scoring.EvaluatorSelf:
		return auth.PermEvaluateSelf
	case scoring.EvaluatorLeader:
		return auth.PermEvaluateLead
	case scoring.EvaluatorBoss:
		return auth.PermEvaluateBoss
	}
	return ""
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{performance.ErrNotParticipant, http.StatusNotFound, "not_participant", "employee is not a participant of this assessment"},
	{performance.ErrNotFound, http.StatusNotFound, "not_found", "resource not found"},
	{performance.ErrForbidden, http.StatusForbidden, "forbidden", "not allowed for this evaluation"},
	{performance.ErrInvalidEvaluator, http.StatusBadRequest, "invalid_evaluator", "evaluator must be self, leader or boss"},
	{performance.ErrTemplateInUse, http.StatusConflict, "template_in_use", "template is used by an assessment"},
	{performance.ErrAssessmentClosed, http.StatusConflict, "assessment_closed", "assessment is closed"},
	{performance.ErrAssessmentNotActive, http.StatusConflict, "assessment_not_active", "assessment is not active"},
	{performance.ErrRecordSubmitted, http.StatusConflict, "evaluation_submitted", "evaluation already submitted"},
	{performance.ErrBossDisabled, http.StatusConflict, "boss_disabled", "boss evaluation is disabled for this template"},
	{performance.ErrBossModeMismatch, http.StatusConflict, "boss_mode_mismatch", "boss evaluation mode does not match the assessment"},
	{performance.ErrIncomplete, http.StatusUnprocessableEntity, "evaluation_incomplete", "every required item must be scored"},
	{performance.ErrFeedbackRequired, http.StatusUnprocessableEntity, "feedback_required", "leader feedback is required"},
	{performance.ErrLeaderOnlyCategory, http.StatusUnprocessableEntity, "leader_only_category", "category is scored by the leader only"},
	{performance.ErrUnknownCategory, http.StatusUnprocessableEntity, "unknown_category", "category is not part of the template"},
	{performance.ErrUnknownItem, http.StatusUnprocessableEntity, "unknown_item", "item is not part of the category"},
	{scoring.ErrScoreOutOfRange, http.StatusUnprocessableEntity, "score_out_of_range", "scores must be between 0 and 100"},
	{scoring.ErrStarOutOfRange, http.StatusUnprocessableEntity, "star_out_of_range", "star ratings must be between 1 and 5"},
	{scoring.ErrStarMappingMissing, http.StatusUnprocessableEntity, "star_mapping_missing", "star rating has no mapped score"},
}

// writeError maps domain errors onto the API envelope. Unmapped errors are
// logged and reported as fallbackCode with status 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())

	var validation *performance.ValidationError
	if errors.As(err, &validation) {
		issues := make([]shared.ValidationIssue, 0, len(validation.Issues))
		for _, issue := range validation.Issues {
			issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Message})
		}
		shared.FailValidation(w, requestID, issues)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			api.Fail(w, m.status, m.code, m.message, requestID)
			return
		}
	}

	slog.Error("performance request failed", "code", fallbackCode, "path", r.URL.Path, "requestId", requestID, "err", err)
	api.Fail(w, http.StatusInternalServerError, fallbackCode, "request failed", requestID)
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		TenantID:   user.TenantID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (h *Handler) notify(ctx context.Context, msg notifications.Message) {
	if h.Notify != nil {
		h.Notify.Notify(ctx, msg)
	}
}

func (h *Handler) invalidateReports(ctx context.Context, tenantID, assessmentID string) {
	if h.Reports != nil {
		h.Reports.Invalidate(ctx, tenantID, assessmentID)
	}
}
